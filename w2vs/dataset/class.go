package dataset

import "fmt"

// Class is the sentiment of an example. Its value is the row index used on the
// class axis of a label tensor.
type Class int

const (
	Positive Class = iota
	Negative
)

// NumClasses is the size of the label tensor's class axis.
const NumClasses = 2

// Literal label tags recognized in record streams.
const (
	PositiveTag = "Positive"
	NegativeTag = "Negative"
)

// ParseClass resolves a record label. Only the exact tags are recognized.
func ParseClass(label string) (Class, bool) {
	switch label {
	case PositiveTag:
		return Positive, true
	case NegativeTag:
		return Negative, true
	default:
		return 0, false
	}
}

func (c Class) String() string {
	switch c {
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}

// Index returns the row of the label tensor's class axis.
func (c Class) Index() int { return int(c) }

// ClassLabels lists class names in class-index order.
func ClassLabels() []string {
	return []string{Positive.String(), Negative.String()}
}

// LabeledExample is one raw text with its resolved class.
type LabeledExample struct {
	Text  string
	Class Class
}
