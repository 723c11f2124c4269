package domain

type WorkerHours struct {
	WorkerName      string
	ConsultingHours float64
	HandsOnHours    float64
	SquadHours      float64
	InternalHours   float64
}

// CaseTimeRecord is one case's hours for the requested period, broken
// down per worker. Records are read-only once decoded.
type CaseTimeRecord struct {
	Title              string
	ClientName         string
	SponsorName        string
	AccountManagerName string
	PerWorkerHours     []WorkerHours
}

// HoursFor sums category f across the record's workers.
func (r CaseTimeRecord) HoursFor(f HoursField) float64 {
	var total float64
	for _, w := range r.PerWorkerHours {
		total += f.Of(w)
	}
	return total
}

// TimesheetSummary holds the totals the backend computes for the whole
// result set.
type TimesheetSummary struct {
	TotalHours            float64
	TotalConsultingHours  float64
	TotalHandsOnHours     float64
	TotalSquadHours       float64
	TotalInternalHours    float64
	UniqueClients         int
	UniqueSponsors        int
	UniqueCases           int
	UniqueWorkers         int
	UniqueAccountManagers int
}

// HoursFor returns the summary total for category f.
func (s TimesheetSummary) HoursFor(f HoursField) float64 {
	switch f {
	case HoursConsulting:
		return s.TotalConsultingHours
	case HoursHandsOn:
		return s.TotalHandsOnHours
	case HoursSquad:
		return s.TotalSquadHours
	case HoursInternal:
		return s.TotalInternalHours
	default:
		return 0
	}
}

// Summarize computes totals and distinct name counts from records, for
// record sets the backend did not summarise as a whole. Empty names are
// not counted; non-finite hours count as 0.
func Summarize(records []CaseTimeRecord) TimesheetSummary {
	var s TimesheetSummary
	clients := map[string]struct{}{}
	sponsors := map[string]struct{}{}
	cases := map[string]struct{}{}
	workers := map[string]struct{}{}
	managers := map[string]struct{}{}
	add := func(set map[string]struct{}, name string) {
		if name != "" {
			set[name] = struct{}{}
		}
	}

	for _, r := range records {
		add(clients, r.ClientName)
		add(sponsors, r.SponsorName)
		add(cases, r.Title)
		add(managers, r.AccountManagerName)
		for _, w := range r.PerWorkerHours {
			add(workers, w.WorkerName)
			s.TotalConsultingHours += HoursConsulting.Of(w)
			s.TotalHandsOnHours += HoursHandsOn.Of(w)
			s.TotalSquadHours += HoursSquad.Of(w)
			s.TotalInternalHours += HoursInternal.Of(w)
		}
	}
	s.TotalHours = s.TotalConsultingHours + s.TotalHandsOnHours + s.TotalSquadHours + s.TotalInternalHours
	s.UniqueClients = len(clients)
	s.UniqueSponsors = len(sponsors)
	s.UniqueCases = len(cases)
	s.UniqueWorkers = len(workers)
	s.UniqueAccountManagers = len(managers)
	return s
}
