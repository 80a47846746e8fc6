// Package harness provides conformance testing for reduction schemas.
//
// Scenarios are defined in YAML files: an inline reduction schema, a
// composite key, and a sequence of JSON documents to fold. Running a
// scenario combines the documents, drains the register groups, and renders
// them as a canonical JSON snapshot for golden file comparison.
//
// # Scenario Format
//
//	name: scenario_name
//	description: "What this scenario validates"
//	schema:
//	  reduce:
//	    strategy: merge
//	  properties:
//	    count:
//	      reduce:
//	        strategy: sum
//	key: [/id]
//	steps:
//	  - doc: '{"id": "a", "count": 2}'
//	  - doc: '{"id": "a", "count": 3}'
//	  - doc: '{"id": "a"}'
//	    left: true
//
// Steps marked left fold as a fully reduced left-hand document, the way a
// stored register folds during a drain, which prunes set tombstones.
//
// # Deterministic Testing
//
// Drained groups order by content-addressed key hash, and snapshots use
// canonical JSON, so identical scenarios produce identical bytes across
// runs for golden file comparison.
package harness
