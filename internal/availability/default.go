package availability

func slots(labels ...string) []TimeSlot {
	out := make([]TimeSlot, 0, len(labels))
	for _, l := range labels {
		out = append(out, TimeSlot{Time: l})
	}
	return out
}

// DefaultWeek is the template assigned to newly registered doctors until they
// set their own hours.
func DefaultWeek() Week {
	return Week{
		{Day: "Monday", IsAvailable: true, TimeSlots: slots("09:00 AM", "10:00 AM", "11:00 AM", "02:00 PM", "03:00 PM", "04:00 PM")},
		{Day: "Tuesday", IsAvailable: true, TimeSlots: slots("09:00 AM", "10:00 AM", "11:00 AM", "02:00 PM", "03:00 PM", "04:00 PM")},
		{Day: "Wednesday", IsAvailable: true, TimeSlots: slots("09:00 AM", "10:00 AM", "11:00 AM", "02:00 PM", "03:00 PM")},
		{Day: "Thursday", IsAvailable: true, TimeSlots: slots("09:00 AM", "10:00 AM", "11:00 AM", "02:00 PM", "03:00 PM", "04:00 PM")},
		{Day: "Friday", IsAvailable: true, TimeSlots: slots("09:00 AM", "10:00 AM", "11:00 AM", "02:00 PM")},
		{Day: "Saturday", IsAvailable: true, TimeSlots: slots("10:00 AM", "11:00 AM", "02:00 PM", "03:00 PM")},
		{Day: "Sunday", IsAvailable: false, TimeSlots: []TimeSlot{}},
	}
}
