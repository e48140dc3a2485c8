// Package sim provides the contact-network simulation engine for cohort-based
// school schedules.
//
// # Reading Guide
//
// Start with these files to understand one trial:
//   - student.go: Student and its contact graph (contact id → shortest degree)
//   - assignment.go: the placement strategy chain that puts students into classes
//   - rotation.go: the Scheduler that convenes one cohort group per day
//   - simulation.go: trial setup, draining and the multi-trial run
//
// # Architecture
//
// A run is a sequence of fully independent trials. Each trial owns its
// factories, its random streams (derived from the run seed and the trial
// index by PartitionedRNG) and its population, so trials may run on a worker
// pool without changing results.
//
// Sub-packages:
//   - sim/trace/: placement and rotation decision records
//   - sim/report/: table rendering and CSV persistence
//   - sim/store/: SQLite run history
//
// # Key Interfaces
//
//   - PlacementStrategy: propose a class for a student, or defer to the next strategy
//   - NameSource: display names for generated students
package sim
