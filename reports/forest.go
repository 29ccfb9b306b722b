package reports

import "finreport/models"

// DefaultMaxDepth bounds both resolvers when no limit is configured.
const DefaultMaxDepth = 64

// Forest is one user's category graph held in memory. Both resolvers walk it
// without further storage round trips.
type Forest struct {
	categories map[string]models.Category
	parent     map[string]string
	children   map[string][]string
	maxDepth   int
}

// NewForest indexes categories and links. A child linked to two different
// parents is rejected; NULL-parent rows only mark roots.
func NewForest(categories []models.Category, links []models.CategoryLink, maxDepth int) (*Forest, error) {
	if maxDepth < 1 {
		maxDepth = DefaultMaxDepth
	}

	f := &Forest{
		categories: make(map[string]models.Category, len(categories)),
		parent:     make(map[string]string, len(links)),
		children:   make(map[string][]string),
		maxDepth:   maxDepth,
	}

	for _, c := range categories {
		f.categories[c.Id] = c
	}

	for _, l := range links {
		if l.ParentId == "" {
			continue
		}

		if l.ParentId == l.ChildrenId {
			return nil, &GraphError{CategoryId: l.ChildrenId, Reason: "self-link"}
		}

		if p, ok := f.parent[l.ChildrenId]; ok {
			if p == l.ParentId {
				continue
			}
			return nil, &GraphError{CategoryId: l.ChildrenId, Reason: "second parent " + l.ParentId}
		}

		f.parent[l.ChildrenId] = l.ParentId
		f.children[l.ParentId] = append(f.children[l.ParentId], l.ChildrenId)
	}

	return f, nil
}

// Len returns the number of categories in the forest.
func (f *Forest) Len() int {
	return len(f.categories)
}

// Descendants returns id and every category below it. Order is unspecified.
func (f *Forest) Descendants(id string) ([]string, error) {
	type frame struct {
		id    string
		depth int
	}

	visited := map[string]bool{id: true}
	ids := []string{id}
	stack := []frame{{id: id}}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, child := range f.children[cur.id] {
			if visited[child] {
				return nil, &GraphError{CategoryId: child, Reason: "cycle"}
			}

			depth := cur.depth + 1
			if depth >= f.maxDepth {
				return nil, &GraphError{CategoryId: child, Reason: "depth limit exceeded"}
			}

			visited[child] = true
			ids = append(ids, child)
			stack = append(stack, frame{id: child, depth: depth})
		}
	}

	return ids, nil
}

// Ancestors returns the chain from id up to its root, nearest first.
func (f *Forest) Ancestors(id string) ([]models.CategoryView, error) {
	var chain []models.CategoryView
	visited := make(map[string]bool)

	for cur := id; ; {
		if visited[cur] {
			return nil, &GraphError{CategoryId: cur, Reason: "cycle"}
		}
		visited[cur] = true

		category, ok := f.categories[cur]
		if !ok {
			return nil, &GraphError{CategoryId: cur, Reason: "dangling reference"}
		}

		if len(chain) == f.maxDepth {
			return nil, &GraphError{CategoryId: cur, Reason: "depth limit exceeded"}
		}
		chain = append(chain, category.View())

		parent, ok := f.parent[cur]
		if !ok {
			return chain, nil
		}
		cur = parent
	}
}
