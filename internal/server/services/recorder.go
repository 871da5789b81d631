package services

// Recorder receives one event per finished service operation. outcome is
// "success" or the Kind of the failure.
type Recorder interface {
	RecordAuth(op, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) RecordAuth(string, string) {}

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	return KindOf(err).String()
}
