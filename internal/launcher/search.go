package launcher

import (
    "strings"

    "github.com/sahilm/fuzzy"
)

type exeSource []Executable

func (s exeSource) String(i int) string { return s[i].Name }
func (s exeSource) Len() int            { return len(s) }

// Search returns executables matching query, best first, at most limit.
// An empty query lists from the top.
func Search(exes []Executable, query string, limit int) []Executable {
    query = strings.TrimSpace(query)
    if query == "" {
        if limit > 0 && len(exes) > limit { return exes[:limit] }
        return exes
    }
    // only the program name is matched; arguments typed after it are kept
    // for launching
    word, _, _ := strings.Cut(query, " ")
    matches := fuzzy.FindFrom(word, exeSource(exes))
    out := make([]Executable, 0, len(matches))
    for _, m := range matches {
        out = append(out, exes[m.Index])
        if limit > 0 && len(out) == limit { break }
    }
    return out
}

// CommandLine builds the exec string for a pick: the chosen program plus
// whatever arguments the user typed after the first word.
func CommandLine(pick Executable, query string) string {
    _, args, _ := strings.Cut(strings.TrimSpace(query), " ")
    args = strings.TrimSpace(args)
    if args == "" { return pick.Path }
    return pick.Path + " " + args
}
