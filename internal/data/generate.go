package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"strconv"
	"time"

	"gonum.org/v1/gonum/stat/distuv"
)

// GenerateConfig shapes a synthetic telemetry file with the same schema as
// the real dataset.
type GenerateConfig struct {
	Rows        int
	Months      int
	Devices     int
	FailureRate float64
	// MinFailuresPerMonth forces that many failing rows into every month so
	// small fixtures always contain both classes per window.
	MinFailuresPerMonth int
	Start               time.Time
	Seed                uint64
}

func DefaultGenerateConfig() GenerateConfig {
	return GenerateConfig{
		Rows:                2000,
		Months:              11,
		Devices:             150,
		FailureRate:         0.05,
		MinFailuresPerMonth: 2,
		Start:               time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC),
		Seed:                42,
	}
}

func GenerateTelemetry(cfg GenerateConfig, out io.Writer) error {
	if cfg.Rows <= 0 || cfg.Months <= 0 {
		return fmt.Errorf("generate: rows and months must be positive")
	}
	if cfg.Devices <= 0 {
		cfg.Devices = 1
	}
	if cfg.Start.IsZero() {
		cfg.Start = time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	src := rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)
	rng := rand.New(src)
	heavy := distuv.LogNormal{Mu: 2, Sigma: 1.5, Src: src}
	counts := distuv.Poisson{Lambda: 0.4, Src: src}

	w := csv.NewWriter(out)
	header := append([]string{"date", "device", "failure"}, AttributeNames()...)
	if err := w.Write(header); err != nil {
		return err
	}

	forced := make(map[int]int, cfg.Months)
	for i := 0; i < cfg.Rows; i++ {
		month := i * cfg.Months / cfg.Rows
		day := rng.IntN(28)
		date := cfg.Start.AddDate(0, month, day)

		failure := 0
		if forced[month] < cfg.MinFailuresPerMonth {
			failure = 1
			forced[month]++
		} else if rng.Float64() < cfg.FailureRate {
			failure = 1
		}

		var attrs [NumAttributes]float64
		attrs[0] = math.Floor(rng.Float64() * 2.4e8)
		attrs[1] = math.Floor(heavy.Rand() * 0.2)
		attrs[2] = counts.Rand()
		attrs[3] = counts.Rand()
		attrs[4] = math.Floor(1 + rng.Float64()*98)
		attrs[5] = math.Floor(2e5 + rng.Float64()*4e5)
		attrs[6] = counts.Rand()
		attrs[7] = attrs[6]
		attrs[8] = math.Floor(heavy.Rand() * 0.05)
		if failure == 1 {
			attrs[1] += math.Floor(50 + heavy.Rand())
			attrs[3] += 5 + counts.Rand()*10
			attrs[6] += 8
			attrs[7] = attrs[6]
		}

		rec := make([]string, 0, len(header))
		rec = append(rec, date.Format(DateLayout), fmt.Sprintf("D%05d", rng.IntN(cfg.Devices)), strconv.Itoa(failure))
		for _, v := range attrs {
			rec = append(rec, strconv.FormatFloat(v, 'f', -1, 64))
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
