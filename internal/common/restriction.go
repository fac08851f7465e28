package common

import "time"

// A restriction means that only the specified number of requests
// are allowed for a specific time duration
type Restriction struct {
	Requests int
	Duration time.Duration
}

// Analyse the recent history of requests and find out
// how long a new request at the current time would have to wait.
// A wait of zero means the request is allowed right away
func (rest *Restriction) Analyse(history []time.Time) time.Duration {

	// Compute the number of requests that have been served in my duration.
	// Start counting from the end.
	// If one request is too old, the rest will be too
	currentTime := time.Now()
	count := 0
	for i := len(history) - 1; i >= 0; i-- {
		if currentTime.Sub(history[i]) > rest.Duration {
			break
		}
		count++
	}
	if count < rest.Requests {
		return 0
	}

	// The slot occupied by the oldest request inside my window
	// frees up once that request ages out of the window
	oldestRequestTime := history[len(history)-count]
	return oldestRequestTime.Add(rest.Duration).Sub(currentTime)
}
