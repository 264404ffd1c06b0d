// Package memory keeps users, plans and progress in process memory. It backs
// database.driver=memory and the service tests. Values are copied on the way
// in and out so callers never share state with the store.
package memory

import (
	"time"

	"alcyxob/confidence-coach/internal/domain"
)

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneProfile(p domain.Profile) domain.Profile {
	out := p
	out.Age = clonePtr(p.Age)
	out.Height = clonePtr(p.Height)
	out.Weight = clonePtr(p.Weight)
	out.Goals = cloneStrings(p.Goals)
	out.Preferences.DietaryRestrictions = cloneStrings(p.Preferences.DietaryRestrictions)
	out.Preferences.AvailableTime = clonePtr(p.Preferences.AvailableTime)
	return out
}

func cloneAssessment(a domain.Assessment) domain.Assessment {
	out := a
	if a.Responses != nil {
		r := *a.Responses
		r.Goals = cloneStrings(r.Goals)
		r.Challenges = cloneStrings(r.Challenges)
		r.Confidence = clonePtr(r.Confidence)
		out.Responses = &r
	}
	return out
}

func cloneUser(u *domain.User) *domain.User {
	out := *u
	out.Profile = cloneProfile(u.Profile)
	out.Assessment = cloneAssessment(u.Assessment)
	return &out
}

func cloneTasks(tasks []domain.Task) []domain.Task {
	if tasks == nil {
		return nil
	}
	out := make([]domain.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t
		out[i].CompletedAt = clonePtr[time.Time](t.CompletedAt)
	}
	return out
}

func clonePlan(p *domain.Plan) *domain.Plan {
	out := *p
	out.Tasks = cloneTasks(p.Tasks)
	return &out
}

func cloneProgress(p *domain.Progress) *domain.Progress {
	out := *p
	if p.Categories != nil {
		out.Categories = append([]domain.CategoryStat(nil), p.Categories...)
	}
	out.Achievements = cloneStrings(p.Achievements)
	out.Challenges = cloneStrings(p.Challenges)
	out.NextDayGoals = cloneStrings(p.NextDayGoals)
	return &out
}
