package parsing

import (
	"github.com/maxaizer/jobs-collector/internal/entities"
)

type Parser struct {
	vocabulary *Vocabulary
}

func NewParser(vocabulary *Vocabulary) *Parser {
	if vocabulary == nil {
		vocabulary = DefaultVocabulary()
	}
	return &Parser{vocabulary: vocabulary}
}

// Parse derives the structured fields of one raw posting. It is pure: the
// fetch timestamp of the posting is the only time reference used.
func (p *Parser) Parse(raw entities.RawPosting) entities.ParsedFields {
	location, regionKey := NormalizeLocation(raw.Location)
	remote := DetectRemote(raw.Remote, raw.Location, raw.Title)
	if regionKey == "" && remote {
		regionKey = RemoteRegionKey
	}

	return entities.ParsedFields{
		Salary:     ParseSalary(raw.Salary),
		Experience: ParseExperience(raw.Experience),
		Skills:     p.vocabulary.ExtractSkills(raw.Title+"\n"+raw.Description, raw.Skills),
		IsRemote:   remote,
		Location:   location,
		RegionKey:  regionKey,
		Deadline:   ParseDate(raw.Deadline, raw.FetchedAt),
		PostedAt:   ParseDate(raw.PostedAt, raw.FetchedAt),
	}
}
