package dedup

import (
	"sort"
	"time"

	"github.com/maxaizer/jobs-collector/internal/entities"
)

// Record is one processed raw posting: parsed fields, category and company identity.
type Record struct {
	Raw       entities.RawPosting
	Fields    entities.ParsedFields
	Category  entities.Category
	CompanyID string
}

type Outcome struct {
	Postings []entities.CanonicalJobPosting
	New      int
	Updated  int
	// Merged counts records of this batch folded into another record.
	Merged int
}

type Deduplicator struct {
	priority map[string]int
}

// NewDeduplicator takes the source priority used to pick a primary among
// postings first seen at the same time. Unlisted sources rank last.
func NewDeduplicator(sourcePriority []string) *Deduplicator {
	priority := make(map[string]int, len(sourcePriority))
	for i, source := range sourcePriority {
		if _, ok := priority[source]; !ok {
			priority[source] = i
		}
	}
	return &Deduplicator{priority: priority}
}

type group struct {
	current  []entities.CanonicalJobPosting
	existing *entities.CanonicalJobPosting
}

// Deduplicate groups the batch by fingerprint together with previously stored
// postings and folds every group into one canonical posting.
func (d *Deduplicator) Deduplicate(records []Record, existing []entities.CanonicalJobPosting, collectedAt time.Time) Outcome {
	stored := make(map[string]*entities.CanonicalJobPosting, len(existing))
	for i := range existing {
		stored[existing[i].ID] = &existing[i]
	}

	groups := make(map[string]*group)
	var ids []string
	for _, record := range records {
		posting := fromRecord(record, collectedAt)
		g, ok := groups[posting.ID]
		if !ok {
			g = &group{existing: stored[posting.ID]}
			groups[posting.ID] = g
			ids = append(ids, posting.ID)
		}
		g.current = append(g.current, posting)
	}
	sort.Strings(ids)

	var outcome Outcome
	for _, id := range ids {
		posting, folded := d.merge(groups[id], collectedAt)
		outcome.Postings = append(outcome.Postings, posting)
		outcome.Merged += folded
		if groups[id].existing == nil {
			outcome.New++
		} else {
			outcome.Updated++
		}
	}
	return outcome
}

func (d *Deduplicator) merge(g *group, collectedAt time.Time) (entities.CanonicalJobPosting, int) {
	members := append([]entities.CanonicalJobPosting{}, g.current...)
	var fallback []entities.CanonicalJobPosting
	existingIsMember := false

	if g.existing != nil {
		previous := *g.existing
		seenAgain := false
		for i := range members {
			if members[i].Source == previous.Source {
				seenAgain = true
				if previous.FirstSeenAt.Before(members[i].FirstSeenAt) {
					members[i].FirstSeenAt = previous.FirstSeenAt
				}
			}
		}
		if seenAgain {
			fallback = append(fallback, previous)
		} else {
			members = append(members, previous)
			existingIsMember = true
		}
	}

	sort.SliceStable(members, func(i, j int) bool {
		return d.less(members[i], members[j])
	})

	primary := members[0]
	merged := primary
	merged.CollectedAt = collectedAt
	merged.Skills = entities.NewSkillSet(primary.Skills...)

	others := append(members[1:len(members):len(members)], fallback...)
	for _, other := range others {
		borrow(&merged, other)
	}

	merged.AlsoSeenIn = alsoSeenIn(primary, others)

	folded := len(g.current) - 1
	if existingIsMember && primary.Source == g.existing.Source {
		folded++
	}
	return merged, folded
}

func (d *Deduplicator) less(a, b entities.CanonicalJobPosting) bool {
	if !a.FirstSeenAt.Equal(b.FirstSeenAt) {
		return a.FirstSeenAt.Before(b.FirstSeenAt)
	}
	if rankA, rankB := d.rank(a.Source), d.rank(b.Source); rankA != rankB {
		return rankA < rankB
	}
	if a.Source != b.Source {
		return a.Source < b.Source
	}
	return a.SourceURL < b.SourceURL
}

func (d *Deduplicator) rank(source string) int {
	if rank, ok := d.priority[source]; ok {
		return rank
	}
	return len(d.priority)
}

// borrow fills fields the target does not know from another member. Known
// values are never overwritten.
func borrow(target *entities.CanonicalJobPosting, from entities.CanonicalJobPosting) {
	if target.Salary == nil && from.Salary != nil {
		salary := *from.Salary
		target.Salary = &salary
	}
	if target.Experience.IsUnknown() && !from.Experience.IsUnknown() {
		target.Experience = from.Experience
	}
	if target.Location == "" && from.Location != "" {
		target.Location = from.Location
	}
	if target.Deadline == nil && from.Deadline != nil {
		target.Deadline = from.Deadline
	}
	if target.PostedAt == nil && from.PostedAt != nil {
		target.PostedAt = from.PostedAt
	}
	if target.Category == entities.CategoryUncategorized && from.Category != entities.CategoryUncategorized {
		target.Category = from.Category
	}
	target.IsRemote = target.IsRemote || from.IsRemote
	target.Skills = target.Skills.Union(from.Skills)
}

// alsoSeenIn lists every other source of the group once, carrying over
// references already stored, and never the primary source itself.
func alsoSeenIn(primary entities.CanonicalJobPosting, others []entities.CanonicalJobPosting) []entities.SourceRef {
	refs := make([]entities.SourceRef, 0)
	seen := map[string]bool{primary.Source: true}

	add := func(ref entities.SourceRef) {
		if ref.Source == "" || seen[ref.Source] {
			return
		}
		seen[ref.Source] = true
		refs = append(refs, ref)
	}

	for _, other := range others {
		add(entities.SourceRef{Source: other.Source, URL: other.SourceURL})
	}
	for _, ref := range primary.AlsoSeenIn {
		add(ref)
	}
	for _, other := range others {
		for _, ref := range other.AlsoSeenIn {
			add(ref)
		}
	}

	sort.Slice(refs, func(i, j int) bool {
		return refs[i].Source < refs[j].Source
	})
	return refs
}

func fromRecord(record Record, collectedAt time.Time) entities.CanonicalJobPosting {
	return entities.CanonicalJobPosting{
		ID:          Fingerprint(record.Raw.Title, record.CompanyID, record.Fields.RegionKey),
		Title:       record.Raw.Title,
		CompanyID:   record.CompanyID,
		Category:    record.Category,
		Skills:      entities.NewSkillSet(record.Fields.Skills...),
		Location:    record.Fields.Location,
		IsRemote:    record.Fields.IsRemote,
		Salary:      record.Fields.Salary,
		Experience:  record.Fields.Experience,
		Deadline:    record.Fields.Deadline,
		PostedAt:    record.Fields.PostedAt,
		CollectedAt: collectedAt,
		FirstSeenAt: collectedAt,
		Source:      record.Raw.Source,
		SourceURL:   record.Raw.URL,
		AlsoSeenIn:  []entities.SourceRef{},
		RegionKey:   record.Fields.RegionKey,
	}
}
