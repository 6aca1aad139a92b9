package assessment

// Collect reads the current selection for every question of a from the
// rendered form. Questions without a selection are left out of the result.
func Collect(form FormState, a *Assessment) Response {
	r := make(Response, a.Len())
	if form == nil {
		return r
	}
	for i := range a.Len() {
		if opt, ok := form.Selected(i); ok {
			r[i] = opt
		}
	}
	return r
}

// Grade scores r against a. A question counts only when a response exists
// for its index and equals the correct answer exactly (no trimming, case
// sensitive).
func Grade(a *Assessment, r Response) Score {
	s := Score{Total: a.Len()}
	for i := range s.Total {
		got, ok := r[i]
		if ok && got == a.Questions[i].CorrectAnswer {
			s.Correct++
		}
	}
	return s
}
