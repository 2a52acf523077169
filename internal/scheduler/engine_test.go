package scheduler

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngineConfig() Config {
	return Config{
		PopulationSize:  20,
		MaxGenerations:  30,
		MutationRate:    0.2,
		ElitismCount:    2,
		TournamentSize:  3,
		StagnationLimit: 10,
		RetryLimit:      50,
	}
}

func TestRunReturnsCompleteBest(t *testing.T) {
	snap := testSnapshot(t)
	engine := NewEngine(snap, testEngineConfig(), rand.New(rand.NewSource(3)), nil)

	result := engine.Run(context.Background())

	require.Len(t, result.Best, len(snap.Courses))
	assert.Greater(t, result.BestFitness, 0.0)
	assert.Greater(t, result.Generations, 0)

	seen := make(map[string]bool)
	for _, gene := range result.Best {
		assert.False(t, seen[gene.CourseID], "course scheduled twice")
		seen[gene.CourseID] = true
	}
}

func TestRunBestNeverWorsens(t *testing.T) {
	snap := testSnapshot(t)
	cfg := testEngineConfig()

	shortCfg := cfg
	shortCfg.MaxGenerations = 3
	shortCfg.StagnationLimit = 100
	short := NewEngine(snap, shortCfg, rand.New(rand.NewSource(9)), nil).Run(context.Background())

	longCfg := cfg
	longCfg.MaxGenerations = 30
	longCfg.StagnationLimit = 100
	long := NewEngine(snap, longCfg, rand.New(rand.NewSource(9)), nil).Run(context.Background())

	assert.GreaterOrEqual(t, long.BestFitness, short.BestFitness)
}

func TestRunStopsOnStagnation(t *testing.T) {
	snap := testSnapshot(t)
	cfg := testEngineConfig()
	cfg.MaxGenerations = 1000
	cfg.StagnationLimit = 5

	result := NewEngine(snap, cfg, rand.New(rand.NewSource(5)), nil).Run(context.Background())

	assert.True(t, result.Stagnated)
	assert.Less(t, result.Generations, cfg.MaxGenerations)
	require.NotEmpty(t, result.Best)
}

func TestRunDeterministicWithSeed(t *testing.T) {
	snap := testSnapshot(t)
	cfg := testEngineConfig()

	first := NewEngine(snap, cfg, rand.New(rand.NewSource(21)), nil).Run(context.Background())
	second := NewEngine(snap, cfg, rand.New(rand.NewSource(21)), nil).Run(context.Background())

	assert.Equal(t, first.BestFitness, second.BestFitness)
	assert.Equal(t, first.Best, second.Best)
}

func TestRunHonorsCancellation(t *testing.T) {
	snap := testSnapshot(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := NewEngine(snap, testEngineConfig(), rand.New(rand.NewSource(1)), nil).Run(ctx)

	assert.Equal(t, 0, result.Generations)
}

func TestParallelEvaluationMatchesSerial(t *testing.T) {
	snap := testSnapshot(t)

	serialCfg := testEngineConfig()
	serialCfg.StagnationLimit = 100
	parallelCfg := serialCfg
	parallelCfg.Parallelism = 4

	serial := NewEngine(snap, serialCfg, rand.New(rand.NewSource(13)), nil).Run(context.Background())
	parallel := NewEngine(snap, parallelCfg, rand.New(rand.NewSource(13)), nil).Run(context.Background())

	assert.Equal(t, serial.BestFitness, parallel.BestFitness)
	assert.Equal(t, serial.Best, parallel.Best)
}

func TestCrossoverPreservesCourseOrder(t *testing.T) {
	snap := testSnapshot(t)
	engine := NewEngine(snap, testEngineConfig(), rand.New(rand.NewSource(2)), nil)

	parentA := engine.generator.GenerateWithFallback()
	parentB := engine.generator.GenerateWithFallback()

	for i := 0; i < 50; i++ {
		child := engine.crossover(parentA, parentB)
		require.Len(t, child, len(parentA))
		for j := range child {
			assert.Equal(t, parentA[j].CourseID, child[j].CourseID)
		}
	}
}

func TestMutatePreservesCourses(t *testing.T) {
	snap := testSnapshot(t)
	cfg := testEngineConfig()
	cfg.MutationRate = 1.0
	engine := NewEngine(snap, cfg, rand.New(rand.NewSource(4)), nil)

	chromosome := engine.generator.GenerateWithFallback()
	original := chromosome.Clone()

	engine.mutate(chromosome)

	require.Len(t, chromosome, len(original))
	for i := range chromosome {
		assert.Equal(t, original[i].CourseID, chromosome[i].CourseID)
		_, ok := snap.Room(chromosome[i].RoomID)
		assert.True(t, ok)
		_, ok = snap.Lecturer(chromosome[i].LecturerID)
		assert.True(t, ok)
		_, ok = snap.Slot(chromosome[i].SlotID)
		assert.True(t, ok)
	}
}
