// Package roster loads the player list from a CSV file and provides
// display-only filtering. The engine always walks the full roster in file
// order; filters never change cursor semantics.
package roster

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/Sudhir-Rajesh/ipl-pro-auction/internal/domain"
)

// Load reads a roster CSV from path. The file must carry a header row with
// Name, Role, and BasePrice columns (case-insensitive, any order). Files that
// are not valid UTF-8 are decoded as Latin-1, the legacy encoding the source
// spreadsheets tend to arrive in.
func Load(path string) ([]domain.Player, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("roster: read %s: %w", path, err)
	}
	players, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("roster: parse %s: %w", path, err)
	}
	return players, nil
}

// Parse decodes roster CSV bytes into the ordered player list.
func Parse(data []byte) ([]domain.Player, error) {
	if !utf8.Valid(data) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("latin-1 fallback: %w", err)
		}
		data = decoded
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	nameCol, roleCol, priceCol := -1, -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "name":
			nameCol = i
		case "role":
			roleCol = i
		case "baseprice", "base_price":
			priceCol = i
		}
	}
	if nameCol < 0 || roleCol < 0 || priceCol < 0 {
		return nil, fmt.Errorf("header missing Name/Role/BasePrice columns: %v", header)
	}

	var players []domain.Player
	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		name := strings.TrimSpace(record[nameCol])
		if name == "" {
			return nil, fmt.Errorf("line %d: empty player name", line)
		}
		price, err := strconv.ParseInt(strings.TrimSpace(record[priceCol]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: base price: %w", line, err)
		}
		if price < 0 {
			return nil, fmt.Errorf("line %d: negative base price %d", line, price)
		}

		players = append(players, domain.Player{
			Name:      name,
			Role:      strings.TrimSpace(record[roleCol]),
			BasePrice: price,
		})
	}

	if len(players) == 0 {
		return nil, fmt.Errorf("no players")
	}
	return players, nil
}

// Filter returns the players matching the given role. An empty role or "All"
// returns the full list. The result preserves roster order.
func Filter(players []domain.Player, role string) []domain.Player {
	if role == "" || strings.EqualFold(role, "All") {
		return append([]domain.Player(nil), players...)
	}
	out := []domain.Player{}
	for _, p := range players {
		if strings.EqualFold(p.Role, role) {
			out = append(out, p)
		}
	}
	return out
}

// Roles returns the distinct roles in first-appearance order, for building
// filter menus.
func Roles(players []domain.Player) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range players {
		if !seen[p.Role] {
			seen[p.Role] = true
			out = append(out, p.Role)
		}
	}
	return out
}
