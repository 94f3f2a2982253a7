package srcfiles

// List is a query text and the errors found in it.
type List struct {
	Text   string
	File   File
	errors ErrorList
}

func (l *List) AddError(msg string, pos, end int) {
	l.errors.Append(l, msg, pos, end)
}

func (l *List) AddErrorWithHint(msg, hint string, pos, end int) {
	l.errors.Append(l, msg, pos, end)
	l.errors.Hint(hint)
}

func (l *List) Error() error {
	if len(l.errors) == 0 {
		return nil
	}
	return l.errors
}

// New returns a List holding text.
func New(text string) *List {
	return &List{Text: text, File: NewFile(text)}
}

// Errors returns the errors added to l.
func (l *List) Errors() ErrorList {
	return l.errors
}
