// Package pipeline orchestrates one full analysis run: cluster the day's
// evidence by institution, classify each credible cluster, rescore the
// oracle's verdicts deterministically, filter against clients and history,
// and emit at most one lead. Persistence happens exactly once, after best-
// candidate selection, so history never holds partial runs.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dynamic-campus/leadgen-cli/internal/dedupe"
	"github.com/dynamic-campus/leadgen-cli/internal/match"
	"github.com/dynamic-campus/leadgen-cli/internal/model"
	"github.com/dynamic-campus/leadgen-cli/internal/oracle"
	"github.com/dynamic-campus/leadgen-cli/internal/scorer"
	"github.com/dynamic-campus/leadgen-cli/internal/store"
)

const (
	// minEvidenceItems is the run-level floor: below it there is nothing to
	// triangulate and the oracle is never consulted.
	minEvidenceItems = 3

	// minClusterSize is the per-institution credibility floor.
	minClusterSize = 2
)

// Outcome names how a run ended, for logs and telemetry. Evidence
// insufficiency must stay distinguishable from real failures.
type Outcome string

const (
	OutcomeLead                 Outcome = "lead"
	OutcomeSignal               Outcome = "signal"
	OutcomeEmpty                Outcome = "empty"
	OutcomeInsufficientEvidence Outcome = "insufficient_evidence"
)

// RunResult is the product of one analysis run.
type RunResult struct {
	// Opportunity is nil for empty runs.
	Opportunity *model.Opportunity
	Outcome     Outcome
	Clusters    int
	Candidates  int
}

// Assembler runs the daily analysis pass.
type Assembler struct {
	store            store.Store
	oracle           oracle.Classifier
	scoring          scorer.Config
	dedupeWindowDays int
	now              func() time.Time
}

// NewAssembler wires an assembler from its collaborators.
func NewAssembler(st store.Store, oc oracle.Classifier, scoring scorer.Config, dedupeWindowDays int) *Assembler {
	if dedupeWindowDays <= 0 {
		dedupeWindowDays = dedupe.DefaultDuplicateWindowDays
	}
	return &Assembler{
		store:            st,
		oracle:           oc,
		scoring:          scoring,
		dedupeWindowDays: dedupeWindowDays,
		now:              time.Now,
	}
}

// candidate is a scored opportunity awaiting filtering and selection.
// Candidates keep first-seen cluster order, which is what the selection
// tie-break relies on.
type candidate struct {
	opp model.Opportunity
}

// Run executes one analysis pass over the supplied evidence. jobs are the
// active postings used to corroborate news clusters; nil is fine. Store
// errors are fatal; oracle errors degrade to skipped institutions or an
// empty run.
func (a *Assembler) Run(ctx context.Context, evidence []model.EvidenceItem, jobs []model.JobPosting) (*RunResult, error) {
	log := zap.S()

	if len(evidence) < minEvidenceItems {
		log.Infow("run short-circuited, not enough evidence to triangulate",
			"outcome", OutcomeInsufficientEvidence,
			"evidence_items", len(evidence),
		)
		return &RunResult{Outcome: OutcomeInsufficientEvidence}, nil
	}

	// Read state up front: if the store is down the run must not proceed to
	// burn oracle quota on results it cannot safely dedupe or record.
	history, err := a.store.LoadHistory(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: load history")
	}
	clients, err := a.store.LoadKnownClients(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: load known clients")
	}

	clusterer := match.NewClusterer(a.oracle, match.DefaultClusterThreshold)
	clusters := clusterer.Cluster(ctx, evidence)
	if len(clusters) == 0 {
		log.Infow("no institutions identified, falling back to sector signal")
		return a.signalFallback(ctx, evidence)
	}

	candidates := a.classifyAndScore(ctx, clusters)
	a.applyCrossReferences(candidates, clusters, jobs)
	survivors := a.filter(candidates, history, clients)

	if len(survivors) == 0 {
		log.Infow("no candidates survived filtering, falling back to sector signal",
			"clusters", len(clusters),
			"candidates", len(candidates),
		)
		result, err := a.signalFallback(ctx, evidence)
		if err != nil {
			return nil, err
		}
		result.Clusters = len(clusters)
		return result, nil
	}

	best := selectBest(survivors)
	if err := best.Validate(); err != nil {
		return nil, eris.Wrap(err, "pipeline: selected candidate invalid")
	}
	if err := a.store.AppendHistory(ctx, *best); err != nil {
		return nil, eris.Wrap(err, "pipeline: persist lead")
	}

	log.Infow("lead emitted",
		"outcome", OutcomeLead,
		"institution", best.Institution,
		"lead_type", best.LeadType,
		"tier", best.EngagementTier,
		"confidence", best.ConfidenceScore,
	)
	return &RunResult{
		Opportunity: best,
		Outcome:     OutcomeLead,
		Clusters:    len(clusters),
		Candidates:  len(survivors),
	}, nil
}

// classifyAndScore consults the oracle per credible cluster and rescores
// every accepted verdict. The oracle's confidence only gates whether a
// candidate exists; the persisted tier and confidence come from the scorer.
func (a *Assembler) classifyAndScore(ctx context.Context, clusters []match.Cluster) []candidate {
	log := zap.S()

	var candidates []candidate
	for _, cluster := range clusters {
		if len(cluster.Items) < minClusterSize {
			log.Debugw("cluster below credibility floor, skipping",
				"institution", cluster.Institution,
				"items", len(cluster.Items),
			)
			continue
		}

		verdict, err := a.oracle.ClassifyInstitution(ctx, cluster.Institution, cluster.Items)
		if err != nil {
			// transient oracle failure: this institution is out for today,
			// the run continues
			log.Warnw("classification failed, skipping institution",
				"institution", cluster.Institution,
				"error", err,
			)
			continue
		}
		if !verdict.Found {
			log.Debugw("no lead for institution",
				"institution", cluster.Institution,
				"reason", verdict.Reason,
			)
			continue
		}
		if verdict.Confidence < a.scoring.InstitutionConfidenceFloor {
			log.Debugw("oracle confidence below institution floor",
				"institution", cluster.Institution,
				"confidence", verdict.Confidence,
			)
			continue
		}

		candidates = append(candidates, candidate{opp: a.buildOpportunity(cluster, verdict)})
	}
	return candidates
}

func (a *Assembler) buildOpportunity(cluster match.Cluster, verdict *oracle.Classification) model.Opportunity {
	sources := make([]model.Source, 0, len(cluster.Items))
	titles := make([]string, 0, len(cluster.Items))
	evidenceText := verdict.OpportunitySummary
	for _, item := range cluster.Items {
		sources = append(sources, item.Source())
		titles = append(titles, item.Title)
		evidenceText += " " + item.CombinedText()
	}

	tier := a.scoring.ComputeTier(verdict.OpportunitySummary, titles)
	confidence := a.scoring.ComputeConfidence(evidenceText)
	now := a.now()
	day := now.Format(model.DateLayout)

	return model.Opportunity{
		LeadID:             model.NewLeadID(cluster.Institution, verdict.LeadType, now),
		Institution:        cluster.Institution,
		OpportunitySummary: verdict.OpportunitySummary,
		LeadType:           verdict.LeadType,
		EngagementTier:     tier,
		ConfidenceScore:    confidence,
		Sources:            sources,
		DateIdentified:     day,
		Notes:              fmt.Sprintf("Triangulated from %d sources.", len(sources)),
	}
}

// applyCrossReferences corroborates news candidates against active job
// postings. A cross-referenced institution takes the higher of its keyword
// score and the cross-reference score; hiring activity is noted either way.
func (a *Assembler) applyCrossReferences(candidates []candidate, clusters []match.Cluster, jobs []model.JobPosting) {
	if len(candidates) == 0 || len(jobs) == 0 {
		return
	}

	articlesByInstitution := make(map[string][]model.EvidenceItem, len(clusters))
	for _, cluster := range clusters {
		articlesByInstitution[cluster.Institution] = cluster.Items
	}
	refs := match.FindCrossReferences(articlesByInstitution, jobs, match.DefaultClusterThreshold)
	if len(refs) == 0 {
		return
	}

	byInstitution := make(map[string]match.CrossReference, len(refs))
	for _, ref := range refs {
		byInstitution[ref.Institution] = ref
	}

	for i := range candidates {
		ref, ok := byInstitution[candidates[i].opp.Institution]
		if !ok {
			continue
		}
		if score := a.scoring.ComputeCrossRefConfidence(ref); score > candidates[i].opp.ConfidenceScore {
			candidates[i].opp.ConfidenceScore = score
		}
		candidates[i].opp.Notes += fmt.Sprintf(" Corroborated by %d active job postings at %s.",
			len(ref.Jobs), ref.JobInstitution)
		zap.S().Infow("candidate corroborated by hiring activity",
			"institution", candidates[i].opp.Institution,
			"job_postings", len(ref.Jobs),
			"similarity", ref.Similarity,
		)
	}
}

func (a *Assembler) filter(candidates []candidate, history []model.Opportunity, clients []model.KnownClient) []candidate {
	log := zap.S()

	var kept []candidate
	for _, c := range candidates {
		// The floor binds the persisted score, not just the model's advisory
		// one: a confident verdict over keyword-poor evidence is not a lead.
		// Runs after corroboration, which can lift a sparse candidate.
		if c.opp.ConfidenceScore < a.scoring.InstitutionConfidenceFloor {
			log.Infow("dropping candidate, recomputed confidence below floor",
				"institution", c.opp.Institution,
				"confidence", c.opp.ConfidenceScore,
			)
			continue
		}
		if dedupe.IsKnownClient(c.opp.Institution, clients) {
			log.Infow("dropping candidate, institution is a known client",
				"institution", c.opp.Institution,
			)
			continue
		}
		if dedupe.IsDuplicate(c.opp.Institution, c.opp.LeadType, history, a.dedupeWindowDays, a.now()) {
			log.Infow("dropping candidate, duplicate of recent lead",
				"institution", c.opp.Institution,
				"lead_type", c.opp.LeadType,
			)
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

// selectBest picks the highest-confidence survivor; on equal confidence the
// earlier cluster wins.
func selectBest(survivors []candidate) *model.Opportunity {
	best := survivors[0]
	for _, c := range survivors[1:] {
		if c.opp.ConfidenceScore > best.opp.ConfidenceScore {
			best = c
		}
	}
	opp := best.opp
	return &opp
}

// signalFallback asks for a sector-wide trend when no institution-specific
// lead can be produced. An oracle failure here yields an empty run, never an
// error: "no news today" is a valid outcome.
func (a *Assembler) signalFallback(ctx context.Context, evidence []model.EvidenceItem) (*RunResult, error) {
	log := zap.S()

	trend, err := a.oracle.SummarizeSectorTrend(ctx, evidence)
	if err != nil {
		log.Warnw("sector trend call failed, ending run empty", "error", err)
		return &RunResult{Outcome: OutcomeEmpty}, nil
	}
	if !trend.Found || trend.Confidence < a.scoring.SignalConfidenceFloor {
		log.Infow("no usable sector trend",
			"outcome", OutcomeEmpty,
			"found", trend.Found,
			"confidence", trend.Confidence,
		)
		return &RunResult{Outcome: OutcomeEmpty}, nil
	}

	now := a.now()
	sources := make([]model.Source, 0, 3)
	for i, item := range evidence {
		if i >= 3 {
			break
		}
		sources = append(sources, item.Source())
	}

	opp := model.Opportunity{
		LeadID:             model.NewLeadID(model.NoInstitution, model.LeadTypeSignal, now),
		Institution:        model.NoInstitution,
		OpportunitySummary: trend.TrendSummary,
		LeadType:           model.LeadTypeSignal,
		EngagementTier:     model.TierExploratory,
		ConfidenceScore:    trend.Confidence,
		Sources:            sources,
		DateIdentified:     now.Format(model.DateLayout),
		IsFallback:         true,
	}
	if err := opp.Validate(); err != nil {
		return nil, eris.Wrap(err, "pipeline: fallback record invalid")
	}
	if err := a.store.AppendHistory(ctx, opp); err != nil {
		return nil, eris.Wrap(err, "pipeline: persist signal")
	}

	log.Infow("sector signal emitted",
		"outcome", OutcomeSignal,
		"confidence", opp.ConfidenceScore,
	)
	return &RunResult{Opportunity: &opp, Outcome: OutcomeSignal}, nil
}
