package events

import (
	"github.com/maxaizer/jobs-collector/internal/entities"
)

var CollectionFinishedTopic = "CollectionFinishedEvent"

type CollectionFinished struct {
	Report entities.RunReport
}

var CompanyMatchAmbiguousTopic = "CompanyMatchAmbiguousEvent"

// CompanyMatchAmbiguous is published when a company name scored close to the
// match threshold. Merged tells whether the name was attached to Candidate.
type CompanyMatchAmbiguous struct {
	ObservedName string
	Source       string
	Candidate    entities.CompanyIdentity
	Score        float64
	Merged       bool
}
