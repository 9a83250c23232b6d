package tools_test

import (
	"testing"

	"github.com/Maksym-Lukianenko123/impc/parser"
	"github.com/Maksym-Lukianenko123/impc/tools"
	"github.com/stretchr/testify/require"
)

func parseOrFail(t *testing.T, src string) *parser.ProcedureTable {
	t.Helper()
	table, err := parser.Parse(src)
	require.NoError(t, err)
	return table
}

func TestLint_FlagsUninitializedUseOutsideLoopAsError(t *testing.T) {
	table := parseOrFail(t, `
PROGRAM IS
    x, y
IN
    y := x + 1;
END
`)
	issues := tools.NewLinter(nil).Lint(table)
	require.NotEmpty(t, issues)

	var found bool
	for _, issue := range issues {
		if issue.Code == "UNINITIALIZED" && issue.Level == tools.LintError {
			found = true
		}
	}
	require.True(t, found, "expected an UNINITIALIZED error, got %+v", issues)
}

func TestLint_FlagsUninitializedUseInsideLoopAsWarning(t *testing.T) {
	table := parseOrFail(t, `
PROGRAM IS
    x, sum, i
IN
    i := 0;
    WHILE i < 3 DO
        sum := sum + x;
        i := i + 1;
    ENDWHILE
END
`)
	issues := tools.NewLinter(nil).Lint(table)

	var found bool
	for _, issue := range issues {
		if issue.Code == "UNINITIALIZED" && issue.Level == tools.LintWarning {
			found = true
		}
	}
	require.True(t, found, "expected an UNINITIALIZED warning, got %+v", issues)
}

func TestLint_FlagsDeadBranches(t *testing.T) {
	table := parseOrFail(t, `
PROGRAM IS
    x
IN
    IF 1 > 0 THEN
        x := 1;
    ENDIF
END
`)
	issues := tools.NewLinter(nil).Lint(table)

	var found bool
	for _, issue := range issues {
		if issue.Code == "DEAD_BRANCH" {
			found = true
		}
	}
	require.True(t, found, "expected a DEAD_BRANCH finding, got %+v", issues)
}

func TestLint_FlagsUnusedParameters(t *testing.T) {
	table := parseOrFail(t, `
PROCEDURE noop(x) IS
IN
END

PROGRAM IS
    n
IN
    n := 1;
    noop(n);
END
`)
	issues := tools.NewLinter(nil).Lint(table)

	var found bool
	for _, issue := range issues {
		if issue.Code == "UNUSED_PARAM" && issue.Procedure == "noop" {
			found = true
		}
	}
	require.True(t, found, "expected an UNUSED_PARAM finding for noop, got %+v", issues)
}

func TestLint_CleanProgramHasNoUninitializedFindings(t *testing.T) {
	table := parseOrFail(t, `
PROGRAM IS
    x, y
IN
    x := 5;
    y := x + 1;
    WRITE y;
END
`)
	issues := tools.NewLinter(nil).Lint(table)
	for _, issue := range issues {
		require.NotEqual(t, "UNINITIALIZED", issue.Code)
	}
}
