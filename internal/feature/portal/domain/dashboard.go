package domain

import "time"

// Card is one tile on the dashboard.
type Card struct {
	Title   string
	Value   string
	Caption string
}

// Dashboard is the view model of the home page.
type Dashboard struct {
	Greeting    string
	FullName    string
	Email       string
	MemberSince string
	Cards       []Card
}

// gymCards is the demo content shown to every member.
var gymCards = []Card{
	{Title: "Active members", Value: "248", Caption: "+12 this month"},
	{Title: "Classes today", Value: "12", Caption: "3 fully booked"},
	{Title: "Trainers on duty", Value: "6", Caption: "2 on the floor"},
	{Title: "Monthly revenue", Value: "$18,450", Caption: "+8% vs last month"},
}

// NewDashboard builds the dashboard for a signed-in viewer.
func NewDashboard(v Authenticated) Dashboard {
	u := v.User

	fullName := u.DisplayName()
	if u.FirstName != nil && u.LastName != nil && *u.LastName != "" {
		fullName = *u.FirstName + " " + *u.LastName
	}

	cards := make([]Card, len(gymCards))
	copy(cards, gymCards)

	return Dashboard{
		Greeting:    "Welcome back, " + u.DisplayName(),
		FullName:    fullName,
		Email:       u.Email,
		MemberSince: u.CreatedAt.Format(time.DateOnly),
		Cards:       cards,
	}
}
