package reporting

// FilterByActorAndRange keeps the records of actorID whose timestamp falls in
// r. The input slice is left untouched.
func FilterByActorAndRange(records []Record, actorID string, r TimeRange) []Record {
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if rec.ActorID != actorID {
			continue
		}
		if !r.Contains(rec.OccurredAt) {
			continue
		}
		out = append(out, rec)
	}
	return out
}
