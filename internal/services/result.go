package services

// ActionState is the form round-trip payload: the previous state comes in
// with the submission and the next state goes back to the form.
type ActionState struct {
	Errors  map[string][]string `json:"errors,omitempty"`
	Message string              `json:"message,omitempty"`
}

type ResultKind int

const (
	// ResultOk carries an ActionState back to the form.
	ResultOk ResultKind = iota
	// ResultRedirect ends the submission with a navigation to Location.
	ResultRedirect
	// ResultFatal carries an error the action did not recover from.
	ResultFatal
)

func (k ResultKind) String() string {
	switch k {
	case ResultOk:
		return "ok"
	case ResultRedirect:
		return "redirect"
	case ResultFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Result is the outcome of an action. Exactly one of State, Location or Err
// is meaningful, selected by Kind.
type Result struct {
	Kind     ResultKind
	State    ActionState
	Location string
	Err      error
}

func Ok(state ActionState) Result {
	return Result{Kind: ResultOk, State: state}
}

func Redirect(path string) Result {
	return Result{Kind: ResultRedirect, Location: path}
}

func Fatal(err error) Result {
	return Result{Kind: ResultFatal, Err: err}
}
