package outline

import (
	"strconv"
	"strings"
)

// Rule names the trust-policy rule that decided a reconciliation.
type Rule string

const (
	// RuleExternalFailed: the external tree is so sparse that it is presumed
	// broken; the local tree is the base.
	RuleExternalFailed Rule = "external_failed"
	// RuleMissingTopLevel: the external tree has fewer level-1 sections than
	// the local one; the external tree is the base.
	RuleMissingTopLevel Rule = "external_missing_top_level"
	// RuleMissingSections: the external tree is missing more than
	// maxMissingSections sections overall; the external tree is the base.
	RuleMissingSections Rule = "external_missing_sections"
	// RuleAcceptExternal: the external tree is accepted as is.
	RuleAcceptExternal Rule = "accept_external"
)

const (
	sparseExternalMax  = 3
	maxMissingSections = 2
	externalIDPrefix   = "ext-"
	localIDPrefix      = "local-"
)

// Report describes how a reconciliation was decided.
type Report struct {
	Rule          Rule `json:"rule"`
	LocalCount    int  `json:"local_count"`
	ExternalCount int  `json:"external_count"`
	Appended      int  `json:"appended"`
	Backfilled    int  `json:"backfilled"`
}

type treeCounts struct {
	local, external       int
	localTop, externalTop int
}

type trustRule struct {
	rule    Rule
	applies func(c treeCounts) bool
	merge   func(local, external []SectionNode) ([]SectionNode, int)
}

// trustPolicy is evaluated in order; the first rule that applies decides.
var trustPolicy = []trustRule{
	{
		rule:    RuleExternalFailed,
		applies: func(c treeCounts) bool { return c.external <= sparseExternalMax && c.local > c.external },
		merge:   mergeIntoLocal,
	},
	{
		rule:    RuleMissingTopLevel,
		applies: func(c treeCounts) bool { return c.externalTop < c.localTop },
		merge:   mergeIntoExternal,
	},
	{
		rule:    RuleMissingSections,
		applies: func(c treeCounts) bool { return c.local-c.external > maxMissingSections },
		merge:   mergeIntoExternal,
	},
}

// Reconcile merges the local tree with an untrusted external proposal over
// the same text. An empty external tree is valid input and yields local.
func Reconcile(local, external []SectionNode) []SectionNode {
	nodes, _ := ReconcileWithReport(local, external)
	return nodes
}

// ReconcileWithReport is Reconcile that also reports the rule that fired.
func ReconcileWithReport(local, external []SectionNode) ([]SectionNode, Report) {
	external = Normalize(external)
	backfilled := backfillContent(external, local)

	c := treeCounts{
		local:       len(local),
		external:    len(external),
		localTop:    CountLevel(local, 1),
		externalTop: CountLevel(external, 1),
	}
	report := Report{
		Rule:          RuleAcceptExternal,
		LocalCount:    c.local,
		ExternalCount: c.external,
		Backfilled:    backfilled,
	}

	for _, r := range trustPolicy {
		if !r.applies(c) {
			continue
		}
		nodes, appended := r.merge(local, external)
		report.Rule = r.rule
		report.Appended = appended
		return repairParents(nodes), report
	}
	return external, report
}

// Normalize returns a copy of nodes with malformed structural fields
// repaired: nodes with a blank title are dropped, blank ids are assigned,
// duplicate ids suffixed, levels below 1 raised to 1, and parent links that
// do not point at an earlier node of a smaller level cleared.
func Normalize(nodes []SectionNode) []SectionNode {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]SectionNode, 0, len(nodes))
	ids := make(map[string]bool, len(nodes))
	for i, n := range nodes {
		if strings.TrimSpace(n.Title) == "" {
			continue
		}
		if n.Level < 1 {
			n.Level = 1
		}
		if n.ID == "" {
			n.ID = "n" + strconv.Itoa(i+1)
		}
		n.ID = uniqueID(n.ID, "", ids)
		ids[n.ID] = true
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil
	}
	return repairParents(out)
}

// backfillContent fills empty external content from the local node with the
// same id and a matching title, else from the first local node whose title
// matches. It returns how many nodes received content.
func backfillContent(external, local []SectionNode) int {
	if len(external) == 0 || len(local) == 0 {
		return 0
	}
	localKeys := make([]string, len(local))
	for i, n := range local {
		localKeys[i] = titleKey(n.Title)
	}

	filled := 0
	for i := range external {
		if external[i].Content != "" {
			continue
		}
		key := titleKey(external[i].Title)
		src := -1
		for j, n := range local {
			if n.ID == external[i].ID && keysMatch(key, localKeys[j]) {
				src = j
				break
			}
		}
		if src < 0 {
			for j := range local {
				if keysMatch(key, localKeys[j]) {
					src = j
					break
				}
			}
		}
		if src >= 0 && local[src].Content != "" {
			external[i].Content = local[src].Content
			filled++
		}
	}
	return filled
}

// mergeIntoLocal keeps the local tree and appends every external node whose
// title matches no local title, re-namespacing its id.
func mergeIntoLocal(local, external []SectionNode) ([]SectionNode, int) {
	result := Clone(local)
	if result == nil {
		result = []SectionNode{}
	}
	localKeys := make([]string, len(local))
	ids := make(map[string]bool, len(local)+len(external))
	for i, n := range local {
		localKeys[i] = titleKey(n.Title)
		ids[n.ID] = true
	}

	remap := make(map[string]string, len(external))
	appended := 0
	for _, e := range external {
		key := titleKey(e.Title)
		if j := firstMatch(key, localKeys); j >= 0 {
			remap[e.ID] = local[j].ID
			continue
		}
		n := e
		n.ID = uniqueID(e.ID, externalIDPrefix, ids)
		n.ParentID = remap[e.ParentID]
		ids[n.ID] = true
		remap[e.ID] = n.ID
		result = append(result, n)
		appended++
	}
	return result, appended
}

// mergeIntoExternal keeps the external tree and appends every local node
// whose title matches nothing already in the result.
func mergeIntoExternal(local, external []SectionNode) ([]SectionNode, int) {
	result := Clone(external)
	if result == nil {
		result = []SectionNode{}
	}
	keys := make([]string, len(result), len(result)+len(local))
	ids := make(map[string]bool, len(result)+len(local))
	for i, n := range result {
		keys[i] = titleKey(n.Title)
		ids[n.ID] = true
	}

	remap := make(map[string]string, len(local))
	appended := 0
	for _, l := range local {
		key := titleKey(l.Title)
		if j := firstMatch(key, keys); j >= 0 {
			remap[l.ID] = result[j].ID
			continue
		}
		n := l
		n.ID = uniqueID(l.ID, localIDPrefix, ids)
		n.ParentID = remap[l.ParentID]
		ids[n.ID] = true
		remap[l.ID] = n.ID
		result = append(result, n)
		keys = append(keys, key)
		appended++
	}
	return result, appended
}

func firstMatch(key string, keys []string) int {
	for i, k := range keys {
		if keysMatch(key, k) {
			return i
		}
	}
	return -1
}

// uniqueID returns id unchanged when it is free and no prefix is forced for
// collisions; otherwise it prefixes and, if still taken, numbers it.
func uniqueID(id, prefix string, taken map[string]bool) string {
	if prefix == externalIDPrefix {
		id = prefix + id
	} else if taken[id] && prefix != "" {
		id = prefix + id
	}
	if !taken[id] {
		return id
	}
	for k := 2; ; k++ {
		candidate := id + "-" + strconv.Itoa(k)
		if !taken[candidate] {
			return candidate
		}
	}
}

// repairParents clears every parent link that does not reference an earlier
// node with a strictly smaller level. It edits nodes in place.
func repairParents(nodes []SectionNode) []SectionNode {
	levels := make(map[string]int, len(nodes))
	for i := range nodes {
		if p := nodes[i].ParentID; p != "" {
			if lvl, ok := levels[p]; !ok || lvl >= nodes[i].Level {
				nodes[i].ParentID = ""
			}
		}
		if _, seen := levels[nodes[i].ID]; !seen {
			levels[nodes[i].ID] = nodes[i].Level
		}
	}
	return nodes
}
