package dal

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/models"
)

// LoadPlayersFile reads a JSON array of players
func LoadPlayersFile(path string) ([]models.Player, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read players file: %w", err)
	}
	var players []models.Player
	if err := json.Unmarshal(data, &players); err != nil {
		return nil, fmt.Errorf("parse players file: %w", err)
	}
	for i, p := range players {
		if p.ID == "" {
			return nil, fmt.Errorf("players file entry %d has no id", i)
		}
	}
	return players, nil
}

type seedRow struct {
	id, name, team string
	pos            []string
	age            int
	ecr            float64
	fp, espn       int
	adp            float64
	career         float64
	proj           models.StatLine
	alt            models.StatLine
	injury         models.InjuryStatus
}

// defaultPlayers is a small development pool spanning every roster position
func defaultPlayers() []models.Player {
	rows := []seedRow{
		{"660271", "Shohei Ohtani", "LAD", []string{"UTIL"}, 31, 1, 1, 2, 1.4, 3700,
			models.StatLine{"pa": 690, "runs": 125, "hr": 47, "rbi": 110, "sb": 25, "avg": .285, "ops": .980},
			models.StatLine{"pa": 670, "runs": 118, "hr": 43, "rbi": 104, "sb": 20, "avg": .280, "ops": .955}, ""},
		{"592450", "Aaron Judge", "NYY", []string{"OF"}, 33, 2, 3, 1, 2.6, 4100,
			models.StatLine{"pa": 680, "runs": 120, "hr": 50, "rbi": 125, "sb": 8, "avg": .290, "ops": 1.020},
			models.StatLine{"pa": 650, "runs": 112, "hr": 46, "rbi": 118, "sb": 6, "avg": .282, "ops": .995}, ""},
		{"677951", "Bobby Witt Jr.", "KC", []string{"SS"}, 25, 3, 2, 3, 2.9, 2100,
			models.StatLine{"pa": 700, "runs": 115, "hr": 30, "rbi": 100, "sb": 35, "avg": .300, "ops": .880},
			models.StatLine{"pa": 690, "runs": 108, "hr": 28, "rbi": 96, "sb": 38, "avg": .292, "ops": .860}, ""},
		{"682998", "Corbin Carroll", "ARI", []string{"OF"}, 25, 12, 10, 15, 13.5, 1800,
			models.StatLine{"pa": 660, "runs": 105, "hr": 24, "rbi": 78, "sb": 38, "avg": .265, "ops": .820},
			models.StatLine{"pa": 640, "runs": 98, "hr": 20, "rbi": 72, "sb": 42, "avg": .258, "ops": .800}, ""},
		{"665742", "Juan Soto", "NYM", []string{"OF"}, 27, 4, 4, 5, 4.2, 4300,
			models.StatLine{"pa": 700, "runs": 118, "hr": 36, "rbi": 105, "sb": 10, "avg": .285, "ops": .960},
			models.StatLine{"pa": 690, "runs": 112, "hr": 34, "rbi": 100, "sb": 8, "avg": .280, "ops": .945}, ""},
		{"668939", "Adley Rutschman", "BAL", []string{"C"}, 27, 55, 48, 62, 58.0, 1900,
			models.StatLine{"pa": 620, "runs": 78, "hr": 20, "rbi": 80, "sb": 2, "avg": .262, "ops": .770},
			models.StatLine{"pa": 600, "runs": 72, "hr": 18, "rbi": 74, "sb": 1, "avg": .255, "ops": .750}, ""},
		{"669221", "William Contreras", "MIL", []string{"C"}, 27, 60, 58, 70, 63.0, 1700,
			models.StatLine{"pa": 610, "runs": 80, "hr": 21, "rbi": 88, "sb": 5, "avg": .275, "ops": .800},
			models.StatLine{"pa": 590, "runs": 74, "hr": 19, "rbi": 82, "sb": 4, "avg": .268, "ops": .780}, ""},
		{"518692", "Freddie Freeman", "LAD", []string{"1B"}, 36, 40, 32, 45, 44.0, 8900,
			models.StatLine{"pa": 640, "runs": 95, "hr": 24, "rbi": 95, "sb": 6, "avg": .290, "ops": .860},
			models.StatLine{"pa": 610, "runs": 88, "hr": 22, "rbi": 90, "sb": 5, "avg": .282, "ops": .840}, models.InjuryDTD},
		{"624413", "Pete Alonso", "NYM", []string{"1B"}, 31, 48, 52, 44, 52.0, 3900,
			models.StatLine{"pa": 670, "runs": 88, "hr": 38, "rbi": 110, "sb": 2, "avg": .245, "ops": .820},
			models.StatLine{"pa": 660, "runs": 84, "hr": 36, "rbi": 105, "sb": 2, "avg": .240, "ops": .800}, ""},
		{"683002", "Gunnar Henderson", "BAL", []string{"SS", "3B"}, 24, 6, 7, 6, 8.1, 1700,
			models.StatLine{"pa": 690, "runs": 110, "hr": 33, "rbi": 92, "sb": 18, "avg": .275, "ops": .870},
			models.StatLine{"pa": 670, "runs": 104, "hr": 30, "rbi": 88, "sb": 15, "avg": .268, "ops": .850}, ""},
		{"608369", "Jose Ramirez", "CLE", []string{"3B"}, 33, 7, 8, 9, 7.5, 7200,
			models.StatLine{"pa": 680, "runs": 105, "hr": 32, "rbi": 108, "sb": 30, "avg": .280, "ops": .860},
			models.StatLine{"pa": 660, "runs": 98, "hr": 29, "rbi": 100, "sb": 26, "avg": .272, "ops": .840}, ""},
		{"543760", "Marcus Semien", "TEX", []string{"2B"}, 35, 95, 88, 104, 110.0, 7900,
			models.StatLine{"pa": 690, "runs": 92, "hr": 22, "rbi": 75, "sb": 12, "avg": .245, "ops": .720},
			models.StatLine{"pa": 670, "runs": 86, "hr": 20, "rbi": 70, "sb": 10, "avg": .240, "ops": .705}, ""},
		{"650402", "Gleyber Torres", "DET", []string{"2B"}, 29, 140, 132, 150, 155.0, 3800,
			models.StatLine{"pa": 640, "runs": 82, "hr": 18, "rbi": 70, "sb": 6, "avg": .258, "ops": .740},
			models.StatLine{"pa": 620, "runs": 78, "hr": 16, "rbi": 66, "sb": 5, "avg": .252, "ops": .725}, ""},
		{"669373", "Tarik Skubal", "DET", []string{"SP"}, 29, 8, 6, 11, 9.3, 650,
			models.StatLine{"ip": 195, "strikeouts": 235, "quality_starts": 22, "wins": 16, "era": 2.75, "whip": 0.98},
			models.StatLine{"ip": 188, "strikeouts": 225, "quality_starts": 20, "wins": 15, "era": 2.95, "whip": 1.02}, ""},
		{"694973", "Paul Skenes", "PIT", []string{"SP"}, 23, 10, 9, 12, 10.4, 300,
			models.StatLine{"ip": 185, "strikeouts": 220, "quality_starts": 21, "wins": 12, "era": 2.60, "whip": 0.98},
			models.StatLine{"ip": 175, "strikeouts": 205, "quality_starts": 19, "wins": 11, "era": 2.85, "whip": 1.03}, ""},
		{"554430", "Zack Wheeler", "PHI", []string{"SP"}, 35, 18, 15, 22, 20.5, 1800,
			models.StatLine{"ip": 190, "strikeouts": 210, "quality_starts": 21, "wins": 14, "era": 3.05, "whip": 1.02},
			models.StatLine{"ip": 180, "strikeouts": 198, "quality_starts": 19, "wins": 13, "era": 3.25, "whip": 1.06}, models.InjuryIL60},
		{"661403", "Emmanuel Clase", "CLE", []string{"RP"}, 27, 70, 65, 78, 72.0, 380,
			models.StatLine{"ip": 70, "strikeouts": 70, "saves": 40, "wins": 4, "era": 2.20, "whip": 0.95},
			models.StatLine{"ip": 68, "strikeouts": 66, "saves": 36, "wins": 3, "era": 2.50, "whip": 1.00}, ""},
		{"621242", "Edwin Diaz", "NYM", []string{"RP"}, 31, 85, 80, 95, 90.0, 520,
			models.StatLine{"ip": 62, "strikeouts": 90, "saves": 32, "wins": 4, "era": 2.90, "whip": 1.05},
			models.StatLine{"ip": 60, "strikeouts": 85, "saves": 30, "wins": 3, "era": 3.20, "whip": 1.10}, ""},
	}

	players := make([]models.Player, 0, len(rows)+2)
	for _, r := range rows {
		p := models.Player{
			ID:           r.id,
			Name:         r.name,
			Positions:    r.pos,
			Team:         r.team,
			Age:          models.IntPtr(r.age),
			ECR:          models.FloatPtr(r.ecr),
			Injured:      r.injury != "",
			InjuryStatus: r.injury,
			Rankings: map[string]models.SourceRank{
				"fantasypros": {Rank: models.IntPtr(r.fp), ADP: models.FloatPtr(r.adp)},
				"espn":        {Rank: models.IntPtr(r.espn)},
			},
			Projections: map[string]models.StatLine{"steamer": r.proj, "zips": r.alt},
		}
		if p.IsPitcher() {
			p.CareerIP = models.FloatPtr(r.career)
		} else {
			p.CareerPA = models.IntPtr(int(r.career))
		}
		players = append(players, p)
	}

	players = append(players,
		models.Player{
			ID: "805805", Name: "Konnor Griffin", Positions: []string{"SS"}, Team: "PIT",
			Age: models.IntPtr(19), IsProspect: true, ProspectRank: models.IntPtr(2),
			Rankings: map[string]models.SourceRank{"fantasypros": {Rank: models.IntPtr(280), BestRank: models.IntPtr(150), WorstRank: models.IntPtr(400)}},
			Scouting: &models.ScoutingGrades{
				Hit: models.IntPtr(55), Power: models.IntPtr(60), Run: models.IntPtr(70),
				Field: models.IntPtr(60), Arm: models.IntPtr(60), FutureValue: models.IntPtr(65), Level: "AA",
			},
		},
		models.Player{
			ID: "702616", Name: "Samuel Basallo", Positions: []string{"C"}, Team: "BAL",
			Age: models.IntPtr(21), IsProspect: true, ProspectRank: models.IntPtr(8),
			Rankings: map[string]models.SourceRank{"fantasypros": {Rank: models.IntPtr(240), BestRank: models.IntPtr(160), WorstRank: models.IntPtr(330)}},
			Projections: map[string]models.StatLine{
				"steamer": {"pa": 250, "runs": 30, "hr": 10, "rbi": 34, "sb": 1, "avg": .245, "ops": .740},
			},
			Scouting: &models.ScoutingGrades{
				Hit: models.IntPtr(50), Power: models.IntPtr(65), Run: models.IntPtr(30),
				Field: models.IntPtr(45), Arm: models.IntPtr(70), FutureValue: models.IntPtr(60), Level: "MLB",
			},
		},
	)
	return players
}
