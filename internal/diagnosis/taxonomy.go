package diagnosis

// Feedback is the learner-facing text attached to a diagnosis.
type Feedback struct {
	Short  string
	Detail string
}

// Fixed feedback texts. Endings and clusters have details that name the
// offending suffix or cluster and are built by their rules.
var (
	feedbackCorrect   = Feedback{Short: "Korrekt", Detail: "Udtalen ser korrekt ud."}
	feedbackNearMatch = Feedback{Short: "Næsten", Detail: "Det var næsten rigtigt — et lille lyd/bogstav skiller."}
	feedbackVowelSwap = Feedback{Short: "Vokal", Detail: "Vokalen lyder anderledes end forventet."}
	feedbackOther     = Feedback{Short: "Forkert", Detail: "Udtalen matcher ikke ordet helt."}
)

// shortLabels maps each error type to its short message.
var shortLabels = map[ErrorType]string{
	ErrorMissingEnding: "Mangler endelse",
	ErrorExtraEnding:   "Ekstra endelse",
	ErrorNearMatch:     feedbackNearMatch.Short,
	ErrorVowelSwap:     feedbackVowelSwap.Short,
	ErrorClusterIssue:  "Konsonantklynge",
	ErrorOther:         feedbackOther.Short,
}

// ShortLabel returns the short message for an error type, or "" for an
// unknown or empty type.
func ShortLabel(e ErrorType) string {
	return shortLabels[e]
}

func wrong(e ErrorType, detail string) Result {
	return Result{
		ErrorType:     e,
		MessageShort:  ShortLabel(e),
		MessageDetail: detail,
	}
}
