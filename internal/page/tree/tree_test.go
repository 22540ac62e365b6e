package tree

import (
	"testing"

	"pagenest/internal/page/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func page(id string, parentID *string) model.Page {
	return model.Page{ID: id, ParentID: parentID, Title: "page " + id}
}

func ptr(s string) *string { return &s }

func TestBuildNestsChildrenUnderParents(t *testing.T) {
	pages := []model.Page{
		page("a", nil),
		page("b", ptr("a")),
		page("c", ptr("a")),
		page("d", ptr("b")),
	}

	forest := Build(pages)

	require.Len(t, forest, 1)
	assert.Equal(t, "a", forest[0].ID)
	require.Len(t, forest[0].Children, 2)
	assert.Equal(t, "b", forest[0].Children[0].ID)
	assert.Equal(t, "c", forest[0].Children[1].ID)
	require.Len(t, forest[0].Children[0].Children, 1)
	assert.Equal(t, "d", forest[0].Children[0].Children[0].ID)
}

func TestBuildPromotesOrphansToRoots(t *testing.T) {
	pages := []model.Page{
		page("a", nil),
		page("b", ptr("a")),
		page("c", ptr("missing")),
	}

	forest := Build(pages)

	require.Len(t, forest, 2)
	assert.Equal(t, "a", forest[0].ID)
	assert.Equal(t, "c", forest[1].ID)
	assert.Empty(t, forest[1].Children)
}

func TestBuildChildOrderMatchesInputOrder(t *testing.T) {
	pages := []model.Page{
		page("root", nil),
		page("third", ptr("root")),
		page("first", ptr("root")),
		page("second", ptr("root")),
	}

	forest := Build(pages)

	require.Len(t, forest, 1)
	got := make([]string, 0, 3)
	for _, child := range forest[0].Children {
		got = append(got, child.ID)
	}
	assert.Equal(t, []string{"third", "first", "second"}, got)
}

func TestBuildEveryAcyclicPageAppearsOnce(t *testing.T) {
	pages := []model.Page{
		page("a", nil),
		page("b", ptr("a")),
		page("c", ptr("z")),
		page("d", ptr("c")),
		page("e", nil),
	}

	forest := Build(pages)

	seen := map[string]int{}
	var stack []*model.PageTreeItem
	stack = append(stack, forest...)
	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		seen[item.ID]++
		stack = append(stack, item.Children...)
	}

	require.Len(t, seen, len(pages))
	for id, count := range seen {
		assert.Equalf(t, 1, count, "page %s should appear exactly once", id)
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	pages := []model.Page{
		page("a", nil),
		page("b", ptr("a")),
		page("c", ptr("z")),
	}

	first := Build(pages)
	second := Build(pages)

	assert.Equal(t, first, second)
}

func TestBuildRepromotesSubtreeAfterParentDeleted(t *testing.T) {
	withParent := []model.Page{
		page("a", nil),
		page("b", ptr("a")),
		page("c", ptr("b")),
	}
	forest := Build(withParent)
	require.Len(t, forest, 1)

	// Parent "a" deleted: same listing minus the row, dangling parent_id on "b".
	afterDelete := []model.Page{
		page("b", ptr("a")),
		page("c", ptr("b")),
	}
	forest = Build(afterDelete)

	require.Len(t, forest, 1)
	assert.Equal(t, "b", forest[0].ID)
	require.Len(t, forest[0].Children, 1)
	assert.Equal(t, "c", forest[0].Children[0].ID)
}

func TestBuildCyclicSubtreeVanishes(t *testing.T) {
	pages := []model.Page{
		page("a", nil),
		page("b", ptr("c")),
		page("c", ptr("b")),
	}

	forest := Build(pages)

	// b and c point at each other, neither ever reaches a root.
	require.Len(t, forest, 1)
	assert.Equal(t, "a", forest[0].ID)
}

func TestFlattenSkipsCollapsedSubtrees(t *testing.T) {
	pages := []model.Page{
		page("a", nil),
		page("b", ptr("a")),
		page("c", ptr("b")),
		page("d", nil),
	}
	forest := Build(pages)

	rows := Flatten(forest, map[string]bool{"a": true})

	require.Len(t, rows, 3)
	assert.Equal(t, "a", rows[0].Page.ID)
	assert.Equal(t, 0, rows[0].Depth)
	assert.True(t, rows[0].Expanded)
	assert.Equal(t, "b", rows[1].Page.ID)
	assert.Equal(t, 1, rows[1].Depth)
	assert.True(t, rows[1].HasChildren)
	assert.False(t, rows[1].Expanded)
	assert.Equal(t, "d", rows[2].Page.ID)
	assert.Equal(t, 0, rows[2].Depth)
}

func TestFlattenAllCollapsedShowsOnlyRoots(t *testing.T) {
	pages := []model.Page{
		page("a", nil),
		page("b", ptr("a")),
		page("c", nil),
	}
	forest := Build(pages)

	rows := Flatten(forest, nil)

	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0].Page.ID)
	assert.Equal(t, "c", rows[1].Page.ID)
}

func TestFlattenDeepNestingStaysOrdered(t *testing.T) {
	// A long chain, everything expanded: depth must climb one per level.
	pages := []model.Page{page("p0", nil)}
	expanded := map[string]bool{"p0": true}
	prev := "p0"
	for i := 1; i < 200; i++ {
		id := prev + "c"
		pages = append(pages, page(id, ptr(prev)))
		expanded[id] = true
		prev = id
	}

	rows := Flatten(Build(pages), expanded)

	require.Len(t, rows, 200)
	for i, row := range rows {
		assert.Equal(t, i, row.Depth)
	}
}
