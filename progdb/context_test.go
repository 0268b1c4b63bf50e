package progdb_test

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shubhamkmr04/chapel/progdb"
	"github.com/shubhamkmr04/chapel/uast"
)

// varDeclPattern pulls "var NAME" declarations out of a toy source text,
// just enough structure for the engine-level tests below to exercise a
// real query body without needing an actual parser.
var varDeclPattern = regexp.MustCompile(`var (\w+)`)

func newParseQuery(runs *int) *progdb.QueryTable[string, uast.Result] {
	return progdb.NewQueryTable("parse", uast.MergeResult, func(t progdb.Task, path string) uast.Result {
		*runs++
		ctx := t.Context()
		text := ctx.FileText(t, path)

		var top []uast.Node
		for _, m := range varDeclPattern.FindAllStringSubmatch(text, -1) {
			top = append(top, &uast.VarDecl{Name: m[1]})
		}

		b := uast.NewBuilder(ctx.Interner())
		return b.Build(top, "mod")
	})
}

func TestTwoFileRebuildStableAcrossRevisions(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	require := require.New(t)

	ctx := progdb.NewContext(nil)
	var runs int
	parse := newParseQuery(&runs)

	ctx.SetFileText("A.chpl", "module A { var x = 1; }")
	ctx.SetFileText("B.chpl", "module B { var y = 2; }")
	ctx.AdvanceToNextRevision(false)

	progdb.Query(ctx, parse, "A.chpl")
	progdb.Query(ctx, parse, "B.chpl")
	require.Equal(2, runs)
	assert.Empty(progdb.Errors(parse, "A.chpl"))
	assert.Empty(progdb.Errors(parse, "B.chpl"))

	ctx.AdvanceToNextRevision(false)
	progdb.Query(ctx, parse, "A.chpl")
	progdb.Query(ctx, parse, "B.chpl")

	assert.Equal(2, runs, "neither body should re-run when nothing changed")
}

func TestInputChangePropagatesOnlyToDependents(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	ctx := progdb.NewContext(nil)
	var runs int
	parse := newParseQuery(&runs)

	ctx.SetFileText("A.chpl", "module A { var x = 1; }")
	ctx.SetFileText("B.chpl", "module B { var y = 2; }")
	ctx.AdvanceToNextRevision(false)
	progdb.Query(ctx, parse, "A.chpl")
	progdb.Query(ctx, parse, "B.chpl")
	require := require.New(t)
	require.Equal(2, runs)

	ctx.SetFileText("B.chpl", "module B { var y = 3; }")
	ctx.AdvanceToNextRevision(false)

	aBefore := progdb.Query(ctx, parse, "A.chpl")
	bAfter := progdb.Query(ctx, parse, "B.chpl")

	assert.Equal(3, runs, "A's body must not run again; B's input changed, so only B's body runs")

	ctx2Runs := runs
	progdb.Query(ctx, parse, "B.chpl")
	assert.Equal(ctx2Runs, runs, "B's result should now be reusable again in the same revision")

	_ = aBefore
	_ = bAfter
}

func TestBRebuildsWhenChangedARemainsStable(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	require := require.New(t)

	ctx := progdb.NewContext(nil)
	var runs int
	parse := newParseQuery(&runs)

	ctx.SetFileText("A.chpl", "module A { var x = 1; }")
	ctx.SetFileText("B.chpl", "module B { var y = 2; }")
	ctx.AdvanceToNextRevision(false)
	progdb.Query(ctx, parse, "A.chpl")
	progdb.Query(ctx, parse, "B.chpl")
	require.Equal(2, runs)

	ctx.SetFileText("B.chpl", "module B { var y = 3; }")
	ctx.AdvanceToNextRevision(false)

	runsBeforeA := runs
	progdb.Query(ctx, parse, "A.chpl")
	assert.Equal(runsBeforeA, runs, "A's dependencies did not change; its body must not run")

	progdb.Query(ctx, parse, "B.chpl")
	assert.Equal(runsBeforeA+1, runs, "B's input changed; its body must run exactly once")
}

func TestSetterWhileQueryActiveFailsFast(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	ctx := progdb.NewContext(nil)
	bad := progdb.NewQueryTable("bad", progdb.DefaultMerge[string], func(t progdb.Task, arg string) string {
		ctx := t.Context()
		ctx.SetFileText("sneaky.chpl", "oops")
		return arg
	})

	ctx.SetFileText("x.chpl", "text")
	ctx.AdvanceToNextRevision(false)

	assert.Panics(func() {
		progdb.Query(ctx, bad, "x.chpl")
	})
}

func TestReentrantQueryFailsFast(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	ctx := progdb.NewContext(nil)
	var self *progdb.QueryTable[int, int]
	self = progdb.NewQueryTable("self", progdb.DefaultMerge[int], func(t progdb.Task, arg int) int {
		return progdb.Call(t, self, arg) + 1
	})

	ctx.AdvanceToNextRevision(false)
	assert.Panics(func() {
		progdb.Query(ctx, self, 1)
	})
}

func TestErrorAccumulationAcrossDependents(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	ctx := progdb.NewContext(nil)
	leaf := progdb.NewQueryTable("leaf", progdb.DefaultMerge[int], func(t progdb.Task, arg string) int {
		t.Error(errors.New("bad leaf: " + arg))
		return 0
	})
	parent := progdb.NewQueryTable("parent", progdb.DefaultMerge[int], func(t progdb.Task, arg string) int {
		return progdb.Call(t, leaf, arg)
	})

	ctx.AdvanceToNextRevision(false)
	progdb.Query(ctx, parent, "x")

	assert.Len(progdb.Errors(parent, "x"), 1)
	assert.Len(progdb.Errors(leaf, "x"), 1)

	// Reinvoking parent in a later revision with nothing changed reuses
	// leaf's cell; its errors must still be visible to parent.
	ctx.AdvanceToNextRevision(false)
	progdb.Query(ctx, parent, "x")
	assert.Len(progdb.Errors(parent, "x"), 1)
}

func TestGarbageCollectionScenario(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	ctx := progdb.NewContext(nil)
	ctx.AdvanceToNextRevision(false)

	alpha := ctx.UniqueString("alpha")
	ctx.AdvanceToNextRevision(true)
	ctx.CollectGarbage()

	alphaAfter := ctx.UniqueString("alpha")
	assert.NotEqual(alpha.Pointer(), alphaAfter.Pointer(), "alpha was never re-looked-up before the sweep and should be reclaimed")

	// Idempotent: a second CollectGarbage with no intervening Advance(true)
	// changes nothing further.
	beta := ctx.UniqueString("beta")
	ctx.CollectGarbage()
	ctx.CollectGarbage()
	betaAfter := ctx.UniqueString("beta")
	assert.Equal(beta.Pointer(), betaAfter.Pointer())
}

func TestFilePathForModuleNameIsPreconditionOnly(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	ctx := progdb.NewContext(nil)
	q := progdb.NewQueryTable("readPath", progdb.DefaultMerge[string], func(t progdb.Task, modName string) string {
		return ctx.FilePathForModuleName(t, modName)
	})

	ctx.AdvanceToNextRevision(false)
	assert.Panics(func() {
		progdb.Query(ctx, q, "Missing")
	})

	ctx.SetFilePathForModuleName("Present", "present.chpl")
	assert.NotPanics(func() {
		got := progdb.Query(ctx, q, "Present")
		assert.Equal("present.chpl", got)
	})
}

func TestChangeMonotonicity(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	ctx := progdb.NewContext(nil)
	q := progdb.NewQueryTable("id", progdb.DefaultMerge[int], func(t progdb.Task, arg int) int {
		return arg
	})

	ctx.AdvanceToNextRevision(false)
	progdb.Query(ctx, q, 1)
	for i := 0; i < 5; i++ {
		ctx.AdvanceToNextRevision(false)
		progdb.Query(ctx, q, 1)
	}
	// A cell whose argument never changes keeps the same value, but its
	// dependency-free "input-like" shape means later revisions are not
	// reusable (no setter touched it) and it simply recomputes to the same
	// value each time; lastChanged should never move backwards or exceed
	// lastComputed. There is no public accessor for the raw timestamps, so
	// this is exercised indirectly: the call must never panic and must
	// always return the same, stable value.
	assert.Equal(1, progdb.Query(ctx, q, 1))
}
