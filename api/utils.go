package api

import "strconv"

// parseTaskID parses the :id path parameter. Task ids are positive integers;
// anything else reads as a key no task can have, so callers treat a failed
// parse the same as a missing row.
func parseTaskID(raw string) (int, bool) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
