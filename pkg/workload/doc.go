// Package workload defines the form model of a Kubernetes workload and the
// closed set of kinds the manifest engine supports.
//
// A single Model type serves every kind. Kind-specific settings live in
// optional sub-structs (StatefulSet, Job, CronJob) and in Strategy, and are
// dropped by Normalize when they do not apply:
//
//	m := workload.NewModel(workload.KindDeployment)
//	m.Replicas = ptr.To[int32](3)
//	for _, issue := range workload.Validate(workload.KindDeployment, m) {
//	    fmt.Println(issue)
//	}
//
// Kinds are parsed case-insensitively:
//
//	kind, err := workload.ParseKind("cronjob") // KindCronJob
//
// Validation is advisory. The manifest synthesizer renders any model, and
// the cluster's dry-run remains the authoritative check.
package workload
