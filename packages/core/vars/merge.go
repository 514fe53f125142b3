package vars

import "github.com/abdul-hamid-achik/reqfile/packages/core/parser"

// Merge builds the variable map for section. Precedence, highest first:
// globals, the section preamble, the file preamble, the first sibling
// section that defines a name, then environment variables.
func Merge(file *parser.ParsedFile, section *parser.Section, env, globals map[string]string) map[string]string {
	merged := make(map[string]string, len(env))
	for k, v := range env {
		merged[k] = v
	}

	if file != nil {
		for _, s := range file.Sections {
			if s == section || s.Preamble == nil {
				continue
			}
			for k, v := range s.Preamble.Variables {
				if _, ok := merged[k]; !ok {
					merged[k] = v
				}
			}
		}
		if file.Preamble != nil {
			for k, v := range file.Preamble.Variables {
				merged[k] = v
			}
		}
	}

	if section != nil && section.Preamble != nil {
		for k, v := range section.Preamble.Variables {
			merged[k] = v
		}
	}

	for k, v := range globals {
		merged[k] = v
	}
	return merged
}

// Options merges request options, section options overriding file options.
func Options(file *parser.ParsedFile, section *parser.Section) map[string]string {
	opts := make(map[string]string)
	if file != nil && file.Preamble != nil {
		for k, v := range file.Preamble.Options {
			opts[k] = v
		}
	}
	if section != nil && section.Preamble != nil {
		for k, v := range section.Preamble.Options {
			opts[k] = v
		}
	}
	return opts
}
