package scheduler

import (
	"context"
	"math/rand"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Config holds the evolutionary search hyperparameters. Zero values fall
// back to the defaults below so partially-specified configs stay usable.
type Config struct {
	PopulationSize  int
	MaxGenerations  int
	MutationRate    float64
	ElitismCount    int
	TournamentSize  int
	StagnationLimit int
	RetryLimit      int
	Parallelism     int
	Weights         *Weights
}

func (c Config) withDefaults() Config {
	if c.PopulationSize <= 0 {
		c.PopulationSize = 100
	}
	if c.MaxGenerations <= 0 {
		c.MaxGenerations = 150
	}
	if c.MutationRate <= 0 {
		c.MutationRate = 0.15
	}
	if c.ElitismCount <= 0 {
		c.ElitismCount = 10
	}
	if c.ElitismCount > c.PopulationSize {
		c.ElitismCount = c.PopulationSize
	}
	if c.TournamentSize <= 0 {
		c.TournamentSize = 5
	}
	if c.TournamentSize > c.PopulationSize {
		c.TournamentSize = c.PopulationSize
	}
	if c.StagnationLimit <= 0 {
		c.StagnationLimit = 20
	}
	if c.RetryLimit <= 0 {
		c.RetryLimit = 50
	}
	if c.Weights == nil {
		w := DefaultWeights()
		c.Weights = &w
	}
	return c
}

// Result is the outcome of one search run. Best is returned even when it
// still contains conflicts.
type Result struct {
	Best        Chromosome
	BestFitness float64
	Generations int
	Stagnated   bool
}

// Engine drives generations of selection, crossover, mutation and elitism
// over a population of candidate timetables.
type Engine struct {
	cfg       Config
	snap      *Snapshot
	rng       *rand.Rand
	logger    *zap.Logger
	generator *Generator
	evaluator *Evaluator
}

// NewEngine wires the search over a snapshot. The random source is shared
// with the generator so a fixed seed reproduces the whole run.
func NewEngine(snap *Snapshot, cfg Config, rng *rand.Rand, logger *zap.Logger) *Engine {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:       cfg,
		snap:      snap,
		rng:       rng,
		logger:    logger,
		generator: NewGenerator(snap, rng, cfg.RetryLimit),
		evaluator: NewEvaluator(snap, *cfg.Weights),
	}
}

// Run executes the search until the generation cap, stagnation, or context
// cancellation. Elitism guarantees the best-known fitness never decreases
// across generations.
func (e *Engine) Run(ctx context.Context) Result {
	population := make([]Chromosome, e.cfg.PopulationSize)
	for i := range population {
		population[i] = e.generator.GenerateWithFallback()
	}

	var best Chromosome
	bestFitness := -1.0
	stagnation := 0
	generation := 0

	for ; generation < e.cfg.MaxGenerations; generation++ {
		if ctx.Err() != nil {
			e.logger.Sugar().Warnw("search interrupted", "generation", generation)
			break
		}

		fitness := e.evaluate(population)

		order := sortedByFitness(fitness)
		topIdx := order[0]
		if fitness[topIdx] > bestFitness {
			bestFitness = fitness[topIdx]
			best = population[topIdx].Clone()
			stagnation = 0
		} else {
			stagnation++
		}
		if stagnation >= e.cfg.StagnationLimit {
			e.logger.Sugar().Debugw("search stagnated", "generation", generation, "best_fitness", bestFitness)
			return Result{Best: best, BestFitness: bestFitness, Generations: generation + 1, Stagnated: true}
		}

		next := make([]Chromosome, 0, e.cfg.PopulationSize)
		for i := 0; i < e.cfg.ElitismCount && i < len(order); i++ {
			next = append(next, population[order[i]].Clone())
		}

		for len(next) < e.cfg.PopulationSize {
			parentA := population[e.tournament(fitness)]
			parentB := population[e.tournament(fitness)]
			child := e.crossover(parentA, parentB)
			e.mutate(child)
			next = append(next, child)
		}
		population = next
	}

	return Result{Best: best, BestFitness: bestFitness, Generations: generation, Stagnated: false}
}

// evaluate scores the whole population, sharding across goroutines when
// Parallelism allows. Fitness is pure, so sharding never changes outcomes.
func (e *Engine) evaluate(population []Chromosome) []float64 {
	fitness := make([]float64, len(population))
	workers := e.cfg.Parallelism
	if workers <= 1 {
		for i, candidate := range population {
			fitness[i] = e.evaluator.Score(candidate)
		}
		return fitness
	}

	var wg sync.WaitGroup
	chunk := (len(population) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * chunk
		if start >= len(population) {
			break
		}
		end := start + chunk
		if end > len(population) {
			end = len(population)
		}
		wg.Add(1)
		go func(from, to int) {
			defer wg.Done()
			for i := from; i < to; i++ {
				fitness[i] = e.evaluator.Score(population[i])
			}
		}(start, end)
	}
	wg.Wait()
	return fitness
}

// tournament samples TournamentSize members and returns the index of the
// fittest.
func (e *Engine) tournament(fitness []float64) int {
	best := e.rng.Intn(len(fitness))
	for i := 1; i < e.cfg.TournamentSize; i++ {
		challenger := e.rng.Intn(len(fitness))
		if fitness[challenger] > fitness[best] {
			best = challenger
		}
	}
	return best
}

// crossover splices two parents at one random cut index: genes before the
// cut come from parentA, the rest from parentB. Both parents share the same
// course order so the child stays one-gene-per-course.
func (e *Engine) crossover(parentA, parentB Chromosome) Chromosome {
	child := parentA.Clone()
	if len(child) < 2 {
		return child
	}
	cut := e.rng.Intn(len(child))
	copy(child[cut:], parentB[cut:])
	return child
}

// mutate replaces, with probability MutationRate per gene, one randomly
// chosen attribute of the gene with a fresh filtered random choice.
func (e *Engine) mutate(chromosome Chromosome) {
	for i := range chromosome {
		if e.rng.Float64() >= e.cfg.MutationRate {
			continue
		}
		course, ok := e.snap.Course(chromosome[i].CourseID)
		if !ok {
			continue
		}
		switch e.rng.Intn(4) {
		case 0:
			rooms := e.generator.CandidateRooms(course, false)
			if len(rooms) == 0 {
				rooms = e.snap.Rooms
			}
			if len(rooms) > 0 {
				chromosome[i].RoomID = rooms[e.rng.Intn(len(rooms))].ID
			}
		case 1:
			lecturers := e.generator.CandidateLecturers(course, false)
			if len(lecturers) == 0 {
				lecturers = e.snap.Lecturers
			}
			if len(lecturers) > 0 {
				chromosome[i].LecturerID = lecturers[e.rng.Intn(len(lecturers))].ID
			}
		case 2:
			chromosome[i].Day = e.generator.RandomDay()
		case 3:
			chromosome[i].SlotID = e.generator.RandomSlot().ID
		}
	}
}

func sortedByFitness(fitness []float64) []int {
	order := make([]int, len(fitness))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return fitness[order[a]] > fitness[order[b]]
	})
	return order
}
