// Package rangifer reconstructs how a species' abundance evolved across a
// landscape over thousands of years, driven by changing ice cover, human
// pressure and dispersal. A Latin hypercube sampler produces an ensemble of
// parameter rows; for each row, generators materialize space-time input
// fields which a stochastic population model integrates over the simulated
// period. Replicates are independent and run on a worker pool with
// deterministic per-replicate seeding.
package rangifer

// NumericFloor is the smallest probability worth storing; sparse structures
// drop entries at or below it.
const NumericFloor = 1e-10
