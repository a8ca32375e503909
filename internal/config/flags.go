package config

import "flag"

var (
	flagConfig          = flag.String("config", "", "Path to config file")
	flagDebug           = flag.Bool("debug", false, "Enable debug logging")
	flagLogFile         = flag.String("log-file", "", "Also write logs to this file")
	flagNoTextures      = flag.Bool("no-textures", false, "Do not bind materials to textures")
	flagNoBlending      = flag.Bool("no-terrain-blending", false, "Ignore terrain blend descriptors")
	flagNoWMO           = flag.Bool("no-wmo", false, "Skip world model placements")
	flagNoM2            = flag.Bool("no-m2", false, "Skip doodad placements")
	flagNoGOBJ          = flag.Bool("no-gobj", false, "Skip game object placements")
	flagNoWMOSets       = flag.Bool("no-wmo-sets", false, "Skip WMO doodad sets")
	flagAllowDuplicates = flag.Bool("allow-duplicates", false, "Import rows with an already imported ModelId")
	flagVertexGroups    = flag.Bool("vertex-groups", false, "Create a vertex group per face group")
	flagEmbed           = flag.Bool("embed-textures", false, "Embed textures in exported glTF files")
	flagZUp             = flag.Bool("z-up", false, "Keep the scene Z-up in exported glTF files")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the arguments left after flag parsing.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagNoTextures {
		cfg.Import.ImportTextures = false
	}
	if *flagNoBlending {
		cfg.Import.UseTerrainBlending = false
	}
	if *flagNoWMO {
		cfg.Import.ImportWMO = false
	}
	if *flagNoM2 {
		cfg.Import.ImportM2 = false
	}
	if *flagNoGOBJ {
		cfg.Import.ImportGOBJ = false
	}
	if *flagNoWMOSets {
		cfg.Import.ImportWMOSets = false
	}
	if *flagAllowDuplicates {
		cfg.Import.AllowDuplicates = true
	}
	if *flagVertexGroups {
		cfg.Import.CreateVertexGroups = true
	}
	if *flagEmbed {
		cfg.Export.EmbedTextures = true
	}
	if *flagZUp {
		cfg.Export.YUp = false
	}
}
