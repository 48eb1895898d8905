package dashboard

import (
	"context"
	"fmt"

	"github.com/caio-ishikawa/bountyboard/shared/models"
	"github.com/remeh/sizedwaitgroup"
)

const loadConcurrency = 4

// FetchResult carries one collection's response. Only the field matching Collection is set.
type FetchResult struct {
	Collection      Collection
	Stats           models.Stats
	Programs        []models.Program
	Targets         []models.Target
	Vulnerabilities []models.Vulnerability
	Err             error
}

// Fetch reads a single collection from the backend.
func Fetch(ctx context.Context, backend Backend, collection Collection) FetchResult {
	res := FetchResult{Collection: collection}

	switch collection {
	case StatsCollection:
		res.Stats, res.Err = backend.GetStats(ctx)
	case ProgramsCollection:
		res.Programs, res.Err = backend.ListPrograms(ctx)
	case TargetsCollection:
		res.Targets, res.Err = backend.ListTargets(ctx, nil)
	case VulnerabilitiesCollection:
		res.Vulnerabilities, res.Err = backend.ListVulnerabilities(ctx, nil)
	default:
		res.Err = fmt.Errorf("Unknown collection %v", collection)
	}

	return res
}

// Apply replaces the matching collection on success. A failure is logged and the
// previous state is kept.
func (s *Shell) Apply(res FetchResult) {
	if res.Err != nil {
		s.log.Error().Err(res.Err).Str("collection", res.Collection.String()).Msg("Error fetching collection")
		return
	}

	switch res.Collection {
	case StatsCollection:
		s.Stats = res.Stats
	case ProgramsCollection:
		s.Programs = nonNil(res.Programs)
	case TargetsCollection:
		s.Targets = nonNil(res.Targets)
	case VulnerabilitiesCollection:
		s.Vulnerabilities = nonNil(res.Vulnerabilities)
	}
}

// LoadAll fetches the given collections concurrently. Results are returned in the
// order they were requested.
func LoadAll(ctx context.Context, backend Backend, collections ...Collection) []FetchResult {
	if len(collections) == 0 {
		collections = Collections
	}

	results := make([]FetchResult, len(collections))
	swg := sizedwaitgroup.New(loadConcurrency)
	for i, collection := range collections {
		swg.Add()
		go func(i int, collection Collection) {
			defer swg.Done()
			results[i] = Fetch(ctx, backend, collection)
		}(i, collection)
	}
	swg.Wait()

	return results
}

// Load fetches and applies the given collections, or all of them when none are named.
func (s *Shell) Load(ctx context.Context, backend Backend, collections ...Collection) {
	for _, res := range LoadAll(ctx, backend, collections...) {
		s.Apply(res)
	}
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return make([]T, 0)
	}
	return items
}
