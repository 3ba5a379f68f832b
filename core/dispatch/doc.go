// Package dispatch implements the proximity-ranked donor dispatch engine
// for urgent blood requests.
//
// Given a validated request (blood type, units needed, urgency) it selects,
// from all eligible donors of that type, the geographically closest N
// (N = units needed), records an immutable decision for every eligible donor
// and fans notifications out to the selected subset only.
//
// Key components:
//   - Engine: orchestrates filtering, ranking, selection, persistence and
//     notification fan-out.
//   - DonorFilter: narrows the pool to eligible donors.
//   - RankByDistance: orders eligible donors by haversine distance with a
//     deterministic tie-break.
//   - Select: pure partition of the ranked sequence into selected and
//     not-selected.
//   - BuildMessage: renders the urgency-tagged notification text.
//
// Dispatch flow:
//  1. Resolve the hospital (missing hospital aborts before any side effect)
//  2. Filter, rank and partition eligible donors
//  3. Persist the request and decision set in one transaction
//  4. Send notifications concurrently via the injected transport
//  5. Aggregate per-donor send outcomes in the Result
//
// All collaborators are decoupled via interfaces, supporting testing and
// extension. A single send failure never aborts the batch or rolls back
// persisted decisions.
package dispatch
