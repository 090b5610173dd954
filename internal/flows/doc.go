// Package flows contains the orchestration for every Coordinator operation.
//
// Each Run function takes a typed dependency struct whose fields are
// closures and sentinel values supplied by the root package, so flows never
// import goAuthClient. Flows hold no state between calls; presenters,
// collaborators, metrics and audit stay owned by the Coordinator.
package flows
