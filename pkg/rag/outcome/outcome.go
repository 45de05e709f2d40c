// Package outcome carries a pipeline step's value together with how it was
// obtained. A step never fails outright: it either produced its value from
// the primary dependency (Ok), substituted a local fallback (Degraded), or
// could not reach its dependency at all and returned an empty value
// (Unavailable). Callers use the value either way and keep the reason for
// logs and metrics.
package outcome

type Status string

const (
	StatusOk          Status = "ok"
	StatusDegraded    Status = "degraded"
	StatusUnavailable Status = "unavailable"
)

type Result[T any] struct {
	Value  T
	Status Status
	Reason string
}

func Ok[T any](value T) Result[T] {
	return Result[T]{Value: value, Status: StatusOk}
}

func Degraded[T any](value T, reason string) Result[T] {
	return Result[T]{Value: value, Status: StatusDegraded, Reason: reason}
}

func Unavailable[T any](value T, reason string) Result[T] {
	return Result[T]{Value: value, Status: StatusUnavailable, Reason: reason}
}

func (r Result[T]) IsOk() bool {
	return r.Status == StatusOk
}

// Degradation names a step that did not run on its primary path.
type Degradation struct {
	Step   string `json:"step"`
	Status Status `json:"status"`
	Reason string `json:"reason"`
}

// Note returns the degradation record for step, or false when r is Ok.
func (r Result[T]) Note(step string) (Degradation, bool) {
	if r.IsOk() {
		return Degradation{}, false
	}
	return Degradation{Step: step, Status: r.Status, Reason: r.Reason}, true
}
