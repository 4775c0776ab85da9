package voicelog

// Compose merges the three analysis outputs into the terminal artifact.
// Exactly one of the returns is non-nil: an unmatched account always
// short-circuits to a FailureReport and no record exists for the caller
// to post. Composition is deterministic apart from the clock.
func Compose(activityType ActivityType, match MatchResult, contact *Contact, rawText string, clock Clock) (*ActivityRecord, *FailureReport) {
	contactName := ""
	if contact != nil {
		contactName = contact.Display()
	}

	if !match.Matched() {
		return nil, &FailureReport{
			Reason:    "no account match",
			Kind:      match.Kind,
			Candidate: match.Candidate,
			Ambiguous: match.Ambiguous,
			Type:      activityType,
			Contact:   contactName,
			RawText:   rawText,
		}
	}

	return &ActivityRecord{
		Type:      activityType,
		Account:   match.AccountName(),
		Contact:   contactName,
		Summary:   BuildSummary(rawText),
		RawText:   rawText,
		CreatedAt: clock(),
	}, nil
}
