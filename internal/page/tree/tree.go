package tree

import "pagenest/internal/page/model"

// Build turns a flat page listing into a forest. Callers supply the rows
// already sorted (position ascending); child order within a parent equals the
// relative input order, Build performs no sorting of its own.
//
// A page whose parent id is absent from the input is promoted to a root.
// Cycles are not detected: a cyclic parent chain never reaches a root and is
// simply absent from the result.
func Build(pages []model.Page) []*model.PageTreeItem {
	items := make(map[string]*model.PageTreeItem, len(pages))
	roots := make([]*model.PageTreeItem, 0)

	for _, p := range pages {
		items[p.ID] = &model.PageTreeItem{Page: p, Children: []*model.PageTreeItem{}}
	}

	for _, p := range pages {
		item := items[p.ID]
		if p.ParentID != nil {
			if parent, ok := items[*p.ParentID]; ok {
				parent.Children = append(parent.Children, item)
				continue
			}
		}
		roots = append(roots, item)
	}

	return roots
}

// Row is one visible line of the rendered tree: the page, its depth, and the
// expand state the caller tracks for it.
type Row struct {
	Page        model.Page `json:"page"`
	Depth       int        `json:"depth"`
	HasChildren bool       `json:"has_children"`
	Expanded    bool       `json:"expanded"`
}

// Flatten walks the forest into the ordered list of visible rows. Children of
// a collapsed node are skipped. The walk uses an explicit stack with depth
// carried as data, so pathological nesting cannot exhaust the call stack.
func Flatten(forest []*model.PageTreeItem, expanded map[string]bool) []Row {
	type frame struct {
		item  *model.PageTreeItem
		depth int
	}

	rows := make([]Row, 0, len(forest))
	stack := make([]frame, 0, len(forest))
	for i := len(forest) - 1; i >= 0; i-- {
		stack = append(stack, frame{forest[i], 0})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		isExpanded := expanded[f.item.ID]
		rows = append(rows, Row{
			Page:        f.item.Page,
			Depth:       f.depth,
			HasChildren: len(f.item.Children) > 0,
			Expanded:    isExpanded,
		})

		if isExpanded {
			for i := len(f.item.Children) - 1; i >= 0; i-- {
				stack = append(stack, frame{f.item.Children[i], f.depth + 1})
			}
		}
	}

	return rows
}
