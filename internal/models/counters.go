package models

import (
	"fmt"
	"reflect"
	"sort"
)

// AchievementType names the faculty counter a submission affects.
type AchievementType string

const (
	AchievementJournalPublications    AchievementType = "journalpublications"
	AchievementConferencePublications AchievementType = "conferencepublications"
	AchievementBookChapters           AchievementType = "bookchapters"
	AchievementBooks                  AchievementType = "books"
	AchievementPatents                AchievementType = "patents"
	AchievementCopyrights             AchievementType = "copyrights"
	AchievementResearchProjects       AchievementType = "researchprojects"
	AchievementConsultancyProjects    AchievementType = "consultancyprojects"
	AchievementResearchGrants         AchievementType = "researchgrants"
	AchievementStudentProjects        AchievementType = "studentprojects"
	AchievementHackathonsMentored     AchievementType = "hackathonsmentored"
	AchievementFDPsAttended           AchievementType = "fdpsattended"
	AchievementCertifications         AchievementType = "certifications"
	AchievementIndustryCollaborations AchievementType = "industrycollaborations"
	AchievementAwards                 AchievementType = "awards"
)

// CounterField binds an achievement type to its faculty column and accessor.
type CounterField struct {
	Type     AchievementType
	Column   string
	Label    string
	Category AchievementCategory
	value    func(*Faculty) int
}

// Value reads the counter from the faculty record.
func (f CounterField) Value(faculty *Faculty) int {
	if faculty == nil {
		return 0
	}
	return f.value(faculty)
}

var counterRegistry = map[AchievementType]CounterField{
	AchievementJournalPublications: {Column: "journalpublications", Label: "Journal publications", Category: CategoryPublication,
		value: func(f *Faculty) int { return f.JournalPublications }},
	AchievementConferencePublications: {Column: "conferencepublications", Label: "Conference publications", Category: CategoryPublication,
		value: func(f *Faculty) int { return f.ConferencePublications }},
	AchievementBookChapters: {Column: "bookchapters", Label: "Book chapters", Category: CategoryPublication,
		value: func(f *Faculty) int { return f.BookChapters }},
	AchievementBooks: {Column: "books", Label: "Books", Category: CategoryPublication,
		value: func(f *Faculty) int { return f.Books }},
	AchievementPatents: {Column: "patents", Label: "Patents", Category: CategoryInnovationPatents,
		value: func(f *Faculty) int { return f.Patents }},
	AchievementCopyrights: {Column: "copyrights", Label: "Copyrights", Category: CategoryInnovationPatents,
		value: func(f *Faculty) int { return f.Copyrights }},
	AchievementResearchProjects: {Column: "researchprojects", Label: "Research projects", Category: CategoryResearchDev,
		value: func(f *Faculty) int { return f.ResearchProjects }},
	AchievementConsultancyProjects: {Column: "consultancyprojects", Label: "Consultancy projects", Category: CategoryResearchDev,
		value: func(f *Faculty) int { return f.ConsultancyProjects }},
	AchievementResearchGrants: {Column: "researchgrants", Label: "Research grants", Category: CategoryResearchDev,
		value: func(f *Faculty) int { return f.ResearchGrants }},
	AchievementStudentProjects: {Column: "studentprojects", Label: "Student projects guided", Category: CategoryStudentEngagement,
		value: func(f *Faculty) int { return f.StudentProjects }},
	AchievementHackathonsMentored: {Column: "hackathonsmentored", Label: "Hackathons mentored", Category: CategoryStudentEngagement,
		value: func(f *Faculty) int { return f.HackathonsMentored }},
	AchievementFDPsAttended: {Column: "fdpsattended", Label: "FDPs attended", Category: CategoryProfessionalDev,
		value: func(f *Faculty) int { return f.FDPsAttended }},
	AchievementCertifications: {Column: "certifications", Label: "Certifications", Category: CategoryProfessionalDev,
		value: func(f *Faculty) int { return f.Certifications }},
	AchievementIndustryCollaborations: {Column: "industrycollaborations", Label: "Industry collaborations", Category: CategoryIndustryOthers,
		value: func(f *Faculty) int { return f.IndustryCollaborations }},
	AchievementAwards: {Column: "awards", Label: "Awards", Category: CategoryIndustryOthers,
		value: func(f *Faculty) int { return f.Awards }},
}

func init() {
	for t, field := range counterRegistry {
		field.Type = t
		counterRegistry[t] = field
	}
}

// LookupCounter resolves the counter field for an achievement type.
func LookupCounter(t AchievementType) (CounterField, bool) {
	field, ok := counterRegistry[t]
	return field, ok
}

// CounterFields lists every registered counter ordered by column.
func CounterFields() []CounterField {
	fields := make([]CounterField, 0, len(counterRegistry))
	for _, field := range counterRegistry {
		fields = append(fields, field)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Column < fields[j].Column })
	return fields
}

// ValidateCounterRegistry checks every registered column against the integer
// db-tagged fields of Faculty and that each accessor reads its own column.
// It runs once at startup.
func ValidateCounterRegistry() error {
	columns := make(map[string]int)
	rt := reflect.TypeOf(Faculty{})
	for i := 0; i < rt.NumField(); i++ {
		if tag := rt.Field(i).Tag.Get("db"); tag != "" {
			columns[tag] = i
		}
	}
	const sentinel = 7919
	for t, field := range counterRegistry {
		idx, ok := columns[field.Column]
		if !ok {
			return fmt.Errorf("achievement type %q maps to unknown faculty column %q", t, field.Column)
		}
		if rt.Field(idx).Type.Kind() != reflect.Int {
			return fmt.Errorf("achievement type %q maps to non-integer column %q", t, field.Column)
		}
		if !field.Category.Valid() {
			return fmt.Errorf("achievement type %q has invalid category %q", t, field.Category)
		}
		if field.value == nil {
			return fmt.Errorf("achievement type %q has no accessor", t)
		}
		probe := &Faculty{}
		reflect.ValueOf(probe).Elem().Field(idx).SetInt(sentinel)
		if field.value(probe) != sentinel {
			return fmt.Errorf("achievement type %q accessor does not read column %q", t, field.Column)
		}
	}
	return nil
}
