// Package dedupe provides shared singleflight groups used to collapse
// concurrent requests for the same key into a single execution. Callers
// that arrive while a job is running wait for and share its result.
package dedupe

import (
	"strconv"

	"golang.org/x/sync/singleflight"
)

// BattleGroup collapses concurrent battle creation for the same run.
var BattleGroup singleflight.Group

// RunKey is the BattleGroup key for a run id.
func RunKey(runID uint) string {
	return "run:" + strconv.FormatUint(uint64(runID), 10)
}
