package epidemic

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"strings"
)

// DegreeRange bounds the random out-degree each individual draws during
// random topology construction.
type DegreeRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// DefaultDegreeRange gives each individual 3 to 5 contacts.
var DefaultDegreeRange = DegreeRange{Min: 3, Max: 5}

func (d DegreeRange) validate() error {
	if d.Min < 0 || d.Max < d.Min {
		return fmt.Errorf("degree range [%d,%d] is invalid", d.Min, d.Max)
	}
	return nil
}

// RandomGraph builds the default topology: each individual is placed
// uniformly at random inside the general display region and independently
// draws an out-degree within deg, connecting to that many distinct others.
// Edges from separate draws may be redundant; that is accepted. A size of
// zero yields an empty, valid graph.
func RandomGraph(size int, deg DegreeRange, rng *rand.Rand) (*Graph, error) {
	if size < 0 {
		return nil, fmt.Errorf("population size must be non-negative, got %d", size)
	}
	if err := deg.validate(); err != nil {
		return nil, err
	}

	people := make([]*Individual, size)
	for i := 0; i < size; i++ {
		people[i] = &Individual{
			ID:  i,
			Pos: randomGeneralPosition(rng),
		}
	}

	var edges []Edge
	for i := 0; i < size; i++ {
		want := deg.Min
		if deg.Max > deg.Min {
			want += rng.Intn(deg.Max - deg.Min + 1)
		}
		if want > size-1 {
			want = size - 1
		}
		picked := make(map[int]struct{}, want)
		for len(picked) < want {
			j := rng.Intn(size)
			if j == i {
				continue
			}
			if _, dup := picked[j]; dup {
				continue
			}
			picked[j] = struct{}{}
			edges = append(edges, Edge{A: i, B: j})
		}
	}

	return NewGraph(people, edges)
}

// ScaleFreeGraph grows a preferential-attachment topology: each new
// individual attaches to m existing ones chosen proportionally to current
// degree. Produces the hub-dominated structure typical of real contact
// networks.
func ScaleFreeGraph(size, m int, rng *rand.Rand) (*Graph, error) {
	if size < 0 {
		return nil, fmt.Errorf("population size must be non-negative, got %d", size)
	}
	if m < 1 {
		return nil, fmt.Errorf("attachment count must be positive, got %d", m)
	}

	people := make([]*Individual, size)
	for i := 0; i < size; i++ {
		people[i] = &Individual{
			ID:  i,
			Pos: randomGeneralPosition(rng),
		}
	}

	var edges []Edge
	// Endpoint pool: every edge contributes both ends, so sampling from the
	// pool is sampling proportional to degree.
	var pool []int
	seed := m
	if seed > size {
		seed = size
	}
	for i := 1; i < seed; i++ {
		edges = append(edges, Edge{A: i, B: i - 1})
		pool = append(pool, i, i-1)
	}
	for i := seed; i < size; i++ {
		chosen := make(map[int]struct{}, m)
		for len(chosen) < m && len(chosen) < i {
			var j int
			if len(pool) > 0 {
				j = pool[rng.Intn(len(pool))]
			} else {
				j = rng.Intn(i)
			}
			if _, dup := chosen[j]; dup {
				continue
			}
			chosen[j] = struct{}{}
			edges = append(edges, Edge{A: i, B: j})
			pool = append(pool, i, j)
		}
	}

	return NewGraph(people, edges)
}

// LoadEdgeList reads a whitespace-separated "u v" edge list, optionally
// gzip-compressed, and builds a graph from it. When the file holds more than
// target individuals a uniform subset is kept together with its induced
// edges. Positions are assigned uniformly inside the general region.
func LoadEdgeList(path string, target int, rng *rand.Rand) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open edge list: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip edge list: %w", err)
		}
		defer zr.Close()
		r = zr
	}

	ids := make([]int, 0, 256)
	seen := make(map[int]struct{})
	var raw []Edge

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		u, errU := strconv.Atoi(fields[0])
		v, errV := strconv.Atoi(fields[1])
		if errU != nil || errV != nil {
			continue
		}
		raw = append(raw, Edge{A: u, B: v})
		for _, id := range [2]int{u, v} {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read edge list: %w", err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("edge list %s contains no usable edges", path)
	}

	keep := seen
	if target > 0 && len(ids) > target {
		keep = make(map[int]struct{}, target)
		for _, idx := range rng.Perm(len(ids))[:target] {
			keep[ids[idx]] = struct{}{}
		}
	}

	people := make([]*Individual, 0, len(keep))
	for _, id := range ids {
		if _, ok := keep[id]; !ok {
			continue
		}
		people = append(people, &Individual{
			ID:  id,
			Pos: randomGeneralPosition(rng),
		})
	}

	edges := make([]Edge, 0, len(raw))
	for _, e := range raw {
		if _, ok := keep[e.A]; !ok {
			continue
		}
		if _, ok := keep[e.B]; !ok {
			continue
		}
		edges = append(edges, e)
	}

	return NewGraph(people, edges)
}

func randomGeneralPosition(rng *rand.Rand) Position {
	return Position{
		X: GeneralRegion.MinX + rng.Float64()*GeneralRegion.Width(),
		Y: GeneralRegion.MinY + rng.Float64()*GeneralRegion.Height(),
	}
}
