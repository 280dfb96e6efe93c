package lifecycle

import (
	"strings"

	"studiobooking/internal/cancelfee"
	"studiobooking/internal/domain"
)

// Step names, stable for tests and metrics.
const (
	StepProforma      = "proforma_invoice"
	StepInvoice       = "final_invoice"
	StepStorno        = "storno_invoice"
	StepFeeInvoice    = "cancellation_fee_invoice"
	StepEmail         = "email"
	StepEmailProforma = "email_proforma"
	StepEmailAdmin    = "email_admin"
	StepCalendar      = "calendar_sync"
)

// Step is one side-effect outcome of a transition. Detail is the operator-
// facing text; Name stays machine-readable.
type Step struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Skipped bool   `json:"skipped,omitempty"`
	Detail  string `json:"detail"`
}

// Result is what a committed transition returns: the booking in its new
// state, the fee quote when the transition was a cancellation, and the
// side-effect log.
type Result struct {
	Booking *domain.Booking  `json:"booking"`
	Quote   *cancelfee.Quote `json:"quote,omitempty"`
	Steps   []Step           `json:"steps"`
}

// Summary joins the step details into the composite operator message, e.g.
// "Státusz módosítva! | Díjbekérő: D-MIS-100 | Email elküldve". String
// joining lives here at the presentation boundary; everything upstream works
// on the structured steps.
func (r *Result) Summary() string {
	parts := make([]string, 0, len(r.Steps)+1)
	parts = append(parts, "Státusz módosítva!")
	for _, s := range r.Steps {
		parts = append(parts, s.Detail)
	}
	return strings.Join(parts, " | ")
}

func (r *Result) addOK(name, detail string) {
	r.Steps = append(r.Steps, Step{Name: name, OK: true, Detail: detail})
}

func (r *Result) addSkipped(name, detail string) {
	r.Steps = append(r.Steps, Step{Name: name, OK: true, Skipped: true, Detail: detail})
}

func (r *Result) addFailed(name, detail string) {
	r.Steps = append(r.Steps, Step{Name: name, OK: false, Detail: detail})
}
