// Package workflow implements the guarded apply workflow for workload
// manifests: load, edit in form or YAML mode, dry-run, review, confirm and
// apply.
//
// A Controller is a state machine independent of any rendering layer:
//
//	Loading -> Ready -> DryRunning -> Ready -> ConfirmPending -> Submitting -> Done
//	                                                              \-> Failed
//
// Confirm is the only operation that applies a manifest for real, and it is
// only reachable from ConfirmPending, which RequestSubmit enters after
// freezing the text under review. For edits of live objects the review
// carries a diff against the manifest text exactly as loaded.
//
// The cluster is reached through the Store interface:
//
//	c := workflow.New(store)
//	if err := c.LoadExisting(ctx, workload.KindDeployment, "default", "web"); err != nil {
//	    return err
//	}
//	_ = c.UpdateModel(func(m *workload.Model) { m.Replicas = ptr.To[int32](5) })
//	review, err := c.RequestSubmit()
//	// show review.Diff, then
//	result, err := c.Confirm(ctx)
//
// Failures never discard edits: a rejected submit moves to Failed with the
// buffer intact, and the user may retry.
package workflow
