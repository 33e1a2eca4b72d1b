package homework

import "fmt"

// Status is a review state of a homework.
type Status string

const (
	StatusApproved  Status = "approved"
	StatusReviewing Status = "reviewing"
	StatusRejected  Status = "rejected"
)

// verdicts maps each review state to the text sent to the student.
var verdicts = map[Status]string{
	StatusApproved:  "Работа проверена: ревьюеру всё понравилось. Ура!",
	StatusReviewing: "Работа взята на проверку ревьюером.",
	StatusRejected:  "Работа проверена: у ревьюера есть замечания.",
}

// NoHomeworkMessage is sent while the API returns an empty homework list.
const NoHomeworkMessage = "Пока нет сданной текущей домашней работы!"

// Verdict returns the fixed verdict for s.
func (s Status) Verdict() (string, bool) {
	v, ok := verdicts[s]
	return v, ok
}

// IsValid checks if the status is one of the known review states.
func (s Status) IsValid() bool {
	_, ok := verdicts[s]
	return ok
}

// ParseStatus composes the notification text for a homework record.
func ParseStatus(rec Record) (string, error) {
	const op = "ParseStatus"

	name, hasName := rec.Name()
	raw, hasStatus := rec.Status()
	if !hasName || !hasStatus {
		return "", NewError(op, ErrMissingFields,
			fmt.Sprintf("record needs %q and %q", KeyName, KeyStatus))
	}

	status := Status(raw)
	if !status.IsValid() {
		return "", NewError(op, ErrUnknownStatus,
			fmt.Sprintf("unknown status %q of homework %q", raw, name))
	}
	verdict, _ := status.Verdict()

	return fmt.Sprintf("Изменился статус проверки работы \"%s\". %s", name, verdict), nil
}
