package core

// Projection is the category shaped view of an analysis record stored in a collection
type Projection interface {
	Kind() Category
	Identity() Base
}

// Base is the identity subset carried by every projection
type Base struct {
	SenderName   Text `json:"sender_name"`
	FromAddress  Text `json:"from_address"`
	DateSent     Text `json:"date_sent"`
	DateReceived Text `json:"date_received"`
	Summary      Text `json:"summary"`
}

// Identity returns the identity subset
func (b Base) Identity() Base { return b }

// ImportanceProjection is the view of an email the model marked important
type ImportanceProjection struct {
	Base
	Category       Text                `json:"category"`
	Classification Text                `json:"classification"`
	Importance     Text                `json:"importance"`
	ImportantDates List[ImportantDate] `json:"important_dates"`
}

// Kind implements Projection
func (ImportanceProjection) Kind() Category { return CategoryImportance }

// UrgencyProjection is the view of an email the model marked urgent
type UrgencyProjection struct {
	Base
	Urgency         Text                `json:"urgency"`
	Deadline        Text                `json:"deadline"`
	TimeSensitivity Text                `json:"time_sensitivity"`
	ImportantDates  List[ImportantDate] `json:"important_dates"`
}

// Kind implements Projection
func (UrgencyProjection) Kind() Category { return CategoryUrgency }

// InformationalProjection is the view of a newsletter, news or update email
type InformationalProjection struct {
	Base
	ContentType Text `json:"content_type"`
	Category    Text `json:"category"`
}

// Kind implements Projection
func (InformationalProjection) Kind() Category { return CategoryInformational }

// ScheduleProjection carries the calendar events and important dates of an email
type ScheduleProjection struct {
	Base
	Calendar       List[Entry]         `json:"calendar"`
	ImportantDates List[ImportantDate] `json:"important_dates"`
}

// Kind implements Projection
func (ScheduleProjection) Kind() Category { return CategorySchedule }

// CommitmentsProjection carries the commitments others made to the mailbox owner
type CommitmentsProjection struct {
	Base
	Commitments List[Entry] `json:"commitments"`
}

// Kind implements Projection
func (CommitmentsProjection) Kind() Category { return CategoryCommitments }

// OutboundCommitmentsProjection carries what the mailbox owner promised in a sent email
type OutboundCommitmentsProjection struct {
	Base
	IsSentEmail          Flag        `json:"is_sent_email"`
	OutboundCommitments  List[Entry] `json:"outbound_commitments"`
	DeliverablesPromised List[Entry] `json:"deliverables_promised"`
	ConfirmationsSent    List[Entry] `json:"confirmations_sent"`
}

// Kind implements Projection
func (OutboundCommitmentsProjection) Kind() Category { return CategoryOutboundCommitments }

// RequestsProjection carries the tasks and requests addressed to the mailbox owner
type RequestsProjection struct {
	Base
	Requests List[Entry] `json:"requests"`
	Urgency  Text        `json:"urgency"`
}

// Kind implements Projection
func (RequestsProjection) Kind() Category { return CategoryRequests }

// DeadlinesProjection carries the deadlines found in an email
type DeadlinesProjection struct {
	Base
	Deadlines      List[Entry]         `json:"deadlines"`
	ImportantDates List[ImportantDate] `json:"important_dates"`
}

// Kind implements Projection
func (DeadlinesProjection) Kind() Category { return CategoryDeadlines }

type rule struct {
	matches func(r *AnalysisRecord) bool
	project func(r *AnalysisRecord) Projection
}

// rules is indexed by category so a missing entry is caught by the table test
var rules = [categoryCount]rule{
	CategoryImportance: {
		matches: func(r *AnalysisRecord) bool { return r.Metadata.Importance == ImportanceImportant },
		project: func(r *AnalysisRecord) Projection {
			return ImportanceProjection{
				Base:           baseOf(r),
				Category:       r.Category,
				Classification: r.Classification,
				Importance:     r.Metadata.Importance,
				ImportantDates: r.ImportantDates,
			}
		},
	},
	CategoryUrgency: {
		matches: func(r *AnalysisRecord) bool { return r.Metadata.Urgency == UrgencyUrgent },
		project: func(r *AnalysisRecord) Projection {
			return UrgencyProjection{
				Base:            baseOf(r),
				Urgency:         r.Metadata.Urgency,
				Deadline:        r.Metadata.Deadline,
				TimeSensitivity: r.Metadata.TimeSensitivity,
				ImportantDates:  r.ImportantDates,
			}
		},
	},
	CategoryInformational: {
		matches: func(r *AnalysisRecord) bool { return r.Metadata.ContentType == ContentInformational },
		project: func(r *AnalysisRecord) Projection {
			return InformationalProjection{
				Base:        baseOf(r),
				ContentType: r.Metadata.ContentType,
				Category:    r.Category,
			}
		},
	},
	CategorySchedule: {
		matches: func(r *AnalysisRecord) bool {
			return len(r.Entities.Calendar) > 0 || len(r.ImportantDates) > 0
		},
		project: func(r *AnalysisRecord) Projection {
			return ScheduleProjection{
				Base:           baseOf(r),
				Calendar:       r.Entities.Calendar,
				ImportantDates: r.ImportantDates,
			}
		},
	},
	CategoryCommitments: {
		matches: func(r *AnalysisRecord) bool { return len(r.Entities.Commitments) > 0 },
		project: func(r *AnalysisRecord) Projection {
			return CommitmentsProjection{
				Base:        baseOf(r),
				Commitments: r.Entities.Commitments,
			}
		},
	},
	CategoryOutboundCommitments: {
		matches: func(r *AnalysisRecord) bool {
			return len(r.SentAnalysis.OutboundCommitments) > 0 || len(r.SentAnalysis.DeliverablesPromised) > 0
		},
		project: func(r *AnalysisRecord) Projection {
			return OutboundCommitmentsProjection{
				Base:                 baseOf(r),
				IsSentEmail:          r.SentAnalysis.IsSentEmail,
				OutboundCommitments:  r.SentAnalysis.OutboundCommitments,
				DeliverablesPromised: r.SentAnalysis.DeliverablesPromised,
				ConfirmationsSent:    r.SentAnalysis.ConfirmationsSent,
			}
		},
	},
	CategoryRequests: {
		matches: func(r *AnalysisRecord) bool { return len(r.Entities.Requests) > 0 },
		project: func(r *AnalysisRecord) Projection {
			return RequestsProjection{
				Base:     baseOf(r),
				Requests: r.Entities.Requests,
				Urgency:  r.Metadata.Urgency,
			}
		},
	},
	CategoryDeadlines: {
		matches: func(r *AnalysisRecord) bool { return len(r.Entities.Deadlines) > 0 },
		project: func(r *AnalysisRecord) Projection {
			return DeadlinesProjection{
				Base:           baseOf(r),
				Deadlines:      r.Entities.Deadlines,
				ImportantDates: r.ImportantDates,
			}
		},
	},
}

func baseOf(r *AnalysisRecord) Base {
	return Base{
		SenderName:   r.SenderName,
		FromAddress:  r.FromAddress,
		DateSent:     r.DateSent,
		DateReceived: r.DateReceived,
		Summary:      r.Summary,
	}
}

// Categorize files every record into each category whose predicate it satisfies.
// Records keep their input order within each collection.
func Categorize(records []AnalysisRecord) Collections {
	cols := NewCollections()
	for i := range records {
		record := &records[i]
		for c, rl := range rules {
			if rl.matches(record) {
				cols[Category(c)] = append(cols[Category(c)], rl.project(record))
			}
		}
	}
	return cols
}
