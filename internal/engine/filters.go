package engine

// directories WalkFiles never descends into
var defaultExcludeDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"vendor":       true,
	".venv":        true,
	"venv":         true,
	"__pycache__":  true,
	".tox":         true,
	".idea":        true,
}

func isDefaultDirExcluded(name string) bool {
	return defaultExcludeDirs[name]
}
