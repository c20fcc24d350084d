package domain

// AgeKind discriminates the accepted onset-age grammars.
type AgeKind string

const (
	// AgeISODuration is an ISO-8601 duration such as "P3Y2M" or "P11D".
	AgeISODuration AgeKind = "iso8601"
	// AgeGestational is a gestational age such as "G29w2d".
	AgeGestational AgeKind = "gestational"
	// AgeOnsetLabel is an HPO onset class label such as "Congenital onset".
	AgeOnsetLabel AgeKind = "onset_label"
	// AgeNotAvailable is the explicit "na" token.
	AgeNotAvailable AgeKind = "na"
)

// Age is a parsed onset or resolution age. Values are never mutated after
// parsing. Only ISO durations and gestational ages carry a total ordering;
// onset labels map to broad clinical ranges and are not compared.
type Age struct {
	Kind   AgeKind
	Raw    string
	Years  int
	Months int
	Days   int
	// Gestational components, valid when Kind is AgeGestational.
	GestationalWeeks int
	GestationalDays  int
	// Onset term binding, valid when Kind is AgeOnsetLabel.
	OnsetTerm TermID
}

// Comparable reports whether the two ages share an ordered grammar.
func (a *Age) Comparable(b *Age) bool {
	if a == nil || b == nil {
		return false
	}
	if a.Kind == AgeISODuration && b.Kind == AgeISODuration {
		return true
	}
	return a.Kind == AgeGestational && b.Kind == AgeGestational
}

// approximate calendar day counts; adequate for ordering, not arithmetic
const (
	daysPerYear  = 365
	daysPerMonth = 30
)

func (a *Age) orderKey() int {
	switch a.Kind {
	case AgeISODuration:
		return a.Years*daysPerYear + a.Months*daysPerMonth + a.Days
	case AgeGestational:
		return a.GestationalWeeks*7 + a.GestationalDays
	default:
		return 0
	}
}

// After reports whether a is strictly later than b. Both ages must be
// Comparable; callers guard with Comparable first.
func (a *Age) After(b *Age) bool {
	return a.orderKey() > b.orderKey()
}
