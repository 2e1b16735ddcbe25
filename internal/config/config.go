// Package config defines the pipeline configuration and its loading hooks.
// Player sources, drop rules, categories and colors all live here.
package config

import (
	"time"
)

// PlayerSource is one (url, display name) pair to collect.
type PlayerSource struct {
	URL  string `koanf:"url"`
	Name string `koanf:"name"`
}

// Category maps a composite score to its constituent merged columns.
type Category struct {
	Name    string   `koanf:"name"`
	Label   string   `koanf:"label"`
	Columns []string `koanf:"columns"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	LogJSON  bool   `koanf:"log_json"`

	// OutputDir receives intermediate and merged CSV files.
	OutputDir string `koanf:"output_dir"`
	// ChartDir receives rendered radar charts and the XLSX export.
	ChartDir string `koanf:"chart_dir"`
	// MetricsTextfile, when set, receives a Prometheus textfile dump at exit.
	MetricsTextfile string `koanf:"metrics_textfile"`
	// ExportXLSX writes composite_scores.xlsx next to the charts.
	ExportXLSX bool `koanf:"export_xlsx"`

	// HTTP client settings for the stats site.
	HTTPTimeout  time.Duration `koanf:"http_timeout"`
	HTTPRPS      float64       `koanf:"http_rps"`
	HTTPBurst    int           `koanf:"http_burst"`
	UserAgent    string        `koanf:"user_agent"`
	MaxBodyBytes int64         `koanf:"max_body_bytes"`

	// Players lists the collector input, in order.
	Players []PlayerSource `koanf:"players"`
	// TableIDs are the markup ids of the tables to extract.
	TableIDs []string `koanf:"table_ids"`
	// KeyColumns are the join key of the merge step.
	KeyColumns []string `koanf:"key_columns"`
	// DropRules maps a table category (file suffix without .csv) to the
	// columns removed from it before merging.
	DropRules map[string][]string `koanf:"drop_rules"`

	// Competitions kept by the comparator.
	Competitions []string `koanf:"competitions"`
	// StartSeason is the first season kept, compared as a string.
	StartSeason string `koanf:"start_season"`
	// ExcludeColumns are dropped before grouping.
	ExcludeColumns []string `koanf:"exclude_columns"`
	// Categories are plotted clockwise in this order.
	Categories []Category `koanf:"categories"`

	// BackgroundFrom and BackgroundTo define the vertical chart gradient.
	BackgroundFrom string `koanf:"background_from"`
	BackgroundTo   string `koanf:"background_to"`
	// Palette assigns a color to each configured player by position.
	Palette []string `koanf:"palette"`
}

// PlayerNames returns configured display names in input order.
func (c *Config) PlayerNames() []string {
	names := make([]string, 0, len(c.Players))
	for _, p := range c.Players {
		names = append(names, p.Name)
	}
	return names
}

// New returns a Config populated with the shipped defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		OutputDir:       "data",
		ChartDir:        "viz_data",
		MetricsTextfile: "",
		ExportXLSX:      false,

		HTTPTimeout:  30 * time.Second,
		HTTPRPS:      0.2,
		HTTPBurst:    1,
		UserAgent:    "fbradar/1.0",
		MaxBodyBytes: 8 << 20,

		Players: []PlayerSource{
			{URL: "https://fbref.com/fr/joueurs/3b029691/all_comps/Statistiques-Vitinha-Stats---Toutes-les-competitions", Name: "Vitinha"},
			{URL: "https://fbref.com/fr/joueurs/1467af0d/all_comps/Statistiques-Marco-Verratti-Stats---Toutes-les-competitions", Name: "Verratti"},
		},
		TableIDs: []string{
			"stats_passing_expanded",
			"stats_standard_expanded",
			"stats_shooting_expanded",
			"stats_gca_expanded",
			"stats_defense_expanded",
			"stats_possession_expanded",
		},
		KeyColumns: []string{"Saison", "Âge", "Équipe", "Comp"},
		DropRules: map[string][]string{
			"standard_expanded":   {"xG", "npxG", "npxG/Sh", "G-xG", "np:G-xG", "90", "Pays"},
			"shooting_expanded":   {"xG", "npxG", "npxG/Sh", "G-xG", "np:G-xG", "90", "Pays"},
			"passing_expanded":    {"Cmp.1", "Att.1", "Cmp%.1", "Cmp.2", "Att.2", "Cmp%.2", "Cmp.3", "Att.3", "Cmp%.3", "Pays", "90"},
			"possession_expanded": {"Pays", "90", "CSR", "Manqué", "Perte", "Rec", "PrgR"},
			"defense_expanded":    {"Pays", "90", "Manqués", "Err"},
			"gca_expanded":        {"Pays", "90", "AMT90", "AMB90", "PassLive.1", "PassDead.1", "TO.1", "Tirs.1", "Ftp.1", "Déf.1"},
		},

		Competitions:   []string{"1. Champions Lg", "1. Ligue 1"},
		StartSeason:    "2017-2018",
		ExcludeColumns: []string{"Saison", "Âge", "Équipe", "Comp", "Titulaire", "Min", "Joueur"},
		Categories: []Category{
			{
				Name:  "Finition",
				Label: "Qualité de finition",
				Columns: []string{"Buts_x", "B-PénM", "PénM_x", "PénT_x", "PrgR", "Buts_y", "Tirs_x", "TC", "TC%",
					"Tir/90", "TC/90", "B/Tir", "B/TC", "Dist", "CF", "PénM_y", "PénT_y", "Tirs_y"},
			},
			{
				Name:  "Création",
				Label: "Création balle au pied",
				Columns: []string{"PrgC_x", "Touches", "SurfRépDéf", "ZDéf_x", "MilTer_x", "ZOff_x", "SurfRépOff",
					"Action de jeu", "Balle au pied", "TotDist_x", "DistBut_x", "PrgC_y", "1/3_x", "AMT", "AMB"},
			},
			{
				Name:  "Playmaker",
				Label: "Création à la passe",
				Columns: []string{"PD_x", "PrgP_x", "Cmp", "Att_y", "Cmp%", "TotDist_y", "DistBut_y", "PD_y", "xAG_x", "xA",
					"A-xAG", "PC", "1/3_y", "PPA", "CntSR", "PrgP_y", "PassLive", "PassDead"},
			},
			{
				Name:    "Dribble",
				Label:   "Qualité de Dribbles",
				Columns: []string{"Att_x", "Succ", "Succ%", "Tkld", "Tkld%", "TO", "Ftp"},
			},
			{
				Name:  "Défense",
				Label: "Efforts défensifs",
				Columns: []string{"Déf", "Tcl", "TclR", "ZDéf_y", "MilTer_y", "ZOff_y", "Tcl.1", "Att", "Tcl%",
					"Balles contrées", "Tirs", "Passe", "Int", "Tcl+Int", "Dég"},
			},
		},

		BackgroundFrom: "#000000",
		BackgroundTo:   "#3b3700",
		Palette:        []string{"#ff0000", "#0000ff"},
	}
}
