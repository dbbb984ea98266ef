package parameter

import "time"

// Path Search
const (
	// PathMaxConcurrent bounds concurrently running searches
	PathMaxConcurrent = 4

	// PathCostOpen is the default entry cost of an open node
	PathCostOpen = 1.0

	// PathCostWater is the default entry cost of a shallow water node for walkers that may wade
	PathCostWater = 4.0

	// PathWaitTimeout bounds how long blocking callers wait for a result
	PathWaitTimeout = 2 * time.Second
)

// Path Following
const (
	// FollowRevalidateEvery is the minimum number of follower updates between re-checks of an unchanged world
	FollowRevalidateEvery = 30
)
