package state

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ParseNeighbours reads "<name> <cost> <port>" records, one per line. Blank lines are skipped.
func ParseNeighbours(r io.Reader) ([]NeighbourLink, error) {
	neighs := make([]NeighbourLink, 0)
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		link, err := parseNeighbourLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if FindNeighbour(neighs, link.Id) != nil {
			return nil, fmt.Errorf("line %d: duplicate neighbour %s", lineNo, link.Id)
		}
		neighs = append(neighs, link)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return neighs, nil
}

func parseNeighbourLine(line string) (NeighbourLink, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return NeighbourLink{}, fmt.Errorf("expected \"<name> <cost> <port>\", got %q", line)
	}
	if err := NameValidator(fields[0]); err != nil {
		return NeighbourLink{}, err
	}
	cost, err := ParseMetric(fields[1])
	if err != nil {
		return NeighbourLink{}, fmt.Errorf("invalid cost %q: %w", fields[1], err)
	}
	port, err := ParsePort(fields[2])
	if err != nil {
		return NeighbourLink{}, fmt.Errorf("invalid port %q: %w", fields[2], err)
	}
	return NeighbourLink{
		Id:   NodeId(fields[0]),
		Cost: cost,
		Port: port,
	}, nil
}

// ReadNeighbours loads the neighbour registry from disk
func ReadNeighbours(path string) ([]NeighbourLink, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	neighs, err := ParseNeighbours(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return neighs, nil
}

// FormatNeighbours renders links in the format read by ParseNeighbours
func FormatNeighbours(neighs []NeighbourLink) string {
	sb := strings.Builder{}
	for _, n := range neighs {
		sb.WriteString(fmt.Sprintf("%s %d %d\n", n.Id, n.Cost, n.Port))
	}
	return sb.String()
}

func ParseMetric(s string) (Metric, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, err
	}
	if Metric(v) == INF {
		return 0, fmt.Errorf("%d is reserved", v)
	}
	return Metric(v), nil
}

func ParsePort(s string) (uint16, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 16)
	if err != nil {
		return 0, err
	}
	if v == 0 {
		return 0, fmt.Errorf("port must not be 0")
	}
	return uint16(v), nil
}
