package privilege

// Static is a domain.Authorizer with a fixed answer.
type Static bool

func (s Static) IsElevated() bool { return bool(s) }
