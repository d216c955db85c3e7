package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLookups = map[string]Lookup{
	"partner": {"Acme": "acme-id", "Beta": "beta-id"},
}

func TestClassify_Scenarios(t *testing.T) {
	cols := testEntity().Columns

	t.Run("changed rate is an update with remapped partner", func(t *testing.T) {
		current := []Record{rec("id", "1", "partner", "Acme", "km", "0.50")}
		incoming := []Record{recAt("Rates", 2, "id", "1", "partner", "Acme", "km", "0.55")}

		plan, err := Classify(cols, current, incoming, testLookups)
		require.NoError(t, err)

		require.Len(t, plan.ToUpdate, 1)
		assert.Equal(t, map[string]string{"id": "1", "partner": "acme-id", "km": "0.55"}, plan.ToUpdate[0].Values())
		assert.Empty(t, plan.ToCreate)
		assert.Empty(t, plan.ToRemove)
		assert.Empty(t, plan.FailedToMap)
	})

	t.Run("empty incoming removes everything", func(t *testing.T) {
		current := []Record{rec("id", "1", "partner", "Acme", "km", "0.50")}

		plan, err := Classify(cols, current, nil, testLookups)
		require.NoError(t, err)

		assert.Equal(t, current, plan.ToRemove)
		assert.Empty(t, plan.ToCreate)
		assert.Empty(t, plan.ToUpdate)
	})

	t.Run("unknown partner fails to map with provenance", func(t *testing.T) {
		current := []Record{rec("id", "1", "partner", "Acme", "km", "0.50")}
		incoming := []Record{
			recAt("Rates", 2, "id", "1", "partner", "Acme", "km", "0.50"),
			recAt("Rates", 3, "partner", "Nobody", "km", "1"),
			recAt("Other", 5, "id", "1", "partner", "Nobody", "km", "2"),
		}

		plan, err := Classify(cols, current, incoming, testLookups)
		require.NoError(t, err)

		require.Len(t, plan.FailedToMap, 2)
		assert.Equal(t, []string{"partner"}, plan.FailedToMap[0].Columns)
		assert.Equal(t, &Provenance{Sheet: "Rates", Row: 3}, plan.FailedToMap[0].Record.Provenance())
		v, _ := plan.FailedToMap[0].Record.Get("partner")
		assert.Equal(t, "Nobody", v)
		assert.Equal(t, &Provenance{Sheet: "Other", Row: 5}, plan.FailedToMap[1].Record.Provenance())

		assert.Empty(t, plan.ToCreate)
		assert.Empty(t, plan.ToUpdate)
		assert.Empty(t, plan.ToRemove)
	})
}

func TestClassify_DisjointSets(t *testing.T) {
	cols := testEntity().Columns
	current := []Record{
		rec("id", "1", "partner", "Acme", "km", "1"),
		rec("id", "2", "partner", "Beta", "km", "2"),
	}
	incoming := []Record{
		recAt("Rates", 2, "id", "10", "partner", "Acme", "km", "1"),
		recAt("Rates", 3, "id", "11", "partner", "Zeta", "km", "1"),
		recAt("Rates", 4, "partner", "Beta", "km", "3"),
	}

	plan, err := Classify(cols, current, incoming, testLookups)
	require.NoError(t, err)

	assert.Equal(t, current, plan.ToRemove)
	assert.Equal(t, []string{"10", ""}, ids(plan.ToCreate))
	assert.Empty(t, plan.ToUpdate)
	require.Len(t, plan.FailedToMap, 1)
	id, _ := plan.FailedToMap[0].Record.ID()
	assert.Equal(t, "11", id)
}

func TestClassify_IdenticalRowsAreSkipped(t *testing.T) {
	cols := testEntity().Columns
	current := []Record{
		rec("id", "1", "partner", "Acme", "km", "1"),
		rec("id", "2", "partner", "Gone", "km", "2"),
	}
	incoming := []Record{
		recAt("Rates", 2, "id", "1", "partner", "Acme", "km", "1"),
		// Unresolvable partner but unchanged, so it never reaches remapping
		recAt("Rates", 3, "id", "2", "partner", "Gone", "km", "2"),
	}

	plan, err := Classify(cols, current, incoming, testLookups)
	require.NoError(t, err)

	assert.False(t, plan.HasMutations())
	assert.Empty(t, plan.FailedToMap)
	assert.Equal(t, 2, plan.Unchanged)
}

func TestClassify_WhitespaceIsNotFuzzy(t *testing.T) {
	cols := testEntity().Columns
	current := []Record{rec("id", "1", "partner", "Acme", "km", "1.0")}
	incoming := []Record{recAt("Rates", 2, "id", "1", "partner", "Acme", "km", "1")}

	plan, err := Classify(cols, current, incoming, testLookups)
	require.NoError(t, err)
	assert.Len(t, plan.ToUpdate, 1)
}

func TestClassify_Idempotent(t *testing.T) {
	cols := testEntity().Columns
	current := []Record{
		rec("id", "1", "partner", "Acme", "km", "1"),
		rec("id", "2", "partner", "Beta", "km", "2"),
	}
	incoming := []Record{
		recAt("Rates", 2, "id", "1", "partner", "Acme", "km", "5"),
		recAt("Rates", 3, "partner", "Beta", "km", "3"),
		recAt("Rates", 4, "partner", "Nope", "km", "3"),
	}

	first, err := Classify(cols, current, incoming, testLookups)
	require.NoError(t, err)
	second, err := Classify(cols, current, incoming, testLookups)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestClassify_DoesNotModifyInputs(t *testing.T) {
	cols := testEntity().Columns
	incoming := []Record{recAt("Rates", 2, "partner", "Acme", "km", "1")}

	plan, err := Classify(cols, nil, incoming, testLookups)
	require.NoError(t, err)

	v, _ := incoming[0].Get("partner")
	assert.Equal(t, "Acme", v)
	created, _ := plan.ToCreate[0].Get("partner")
	assert.Equal(t, "acme-id", created)
	assert.Equal(t, incoming[0].Provenance(), plan.ToCreate[0].Provenance())
}

func TestClassify_DuplicateIDsLastRowWins(t *testing.T) {
	cols := testEntity().Columns
	current := []Record{rec("id", "1", "partner", "Acme", "km", "1")}
	incoming := []Record{
		recAt("Rates", 2, "id", "1", "partner", "Acme", "km", "2"),
		recAt("Rates", 3, "id", "9", "partner", "Beta", "km", "9"),
		recAt("Rates", 4, "id", "1", "partner", "Acme", "km", "3"),
	}

	plan, err := Classify(cols, current, incoming, testLookups)
	require.NoError(t, err)

	require.Len(t, plan.ToUpdate, 1)
	km, _ := plan.ToUpdate[0].Get("km")
	assert.Equal(t, "3", km)
	assert.Equal(t, 4, plan.ToUpdate[0].Provenance().Row)

	require.Len(t, plan.Superseded, 1)
	assert.Equal(t, 2, plan.Superseded[0].Provenance().Row)
	assert.Equal(t, []string{"9"}, ids(plan.ToCreate))
}

func TestClassify_RowsWithoutIDAreDistinct(t *testing.T) {
	cols := testEntity().Columns
	incoming := []Record{
		recAt("Rates", 2, "partner", "Acme", "km", "1"),
		recAt("Rates", 3, "partner", "Acme", "km", "1"),
	}

	plan, err := Classify(cols, nil, incoming, testLookups)
	require.NoError(t, err)

	assert.Len(t, plan.ToCreate, 2)
	assert.Empty(t, plan.Superseded)
}

func TestClassify_AbsentForeignKeyFails(t *testing.T) {
	cols := testEntity().Columns
	incoming := []Record{recAt("Rates", 2, "id", "5", "km", "1")}

	plan, err := Classify(cols, nil, incoming, testLookups)
	require.NoError(t, err)

	require.Len(t, plan.FailedToMap, 1)
	assert.Equal(t, []string{"partner"}, plan.FailedToMap[0].Columns)
	assert.Equal(t, "Rates:2: unresolved partner", plan.FailedToMap[0].String())
}

func TestClassify_MissingLookup(t *testing.T) {
	_, err := Classify(testEntity().Columns, nil, nil, map[string]Lookup{})
	assert.ErrorIs(t, err, ErrMissingLookup)

	_, err = Classify(testEntity().Columns, nil, nil, map[string]Lookup{"partner": {}})
	assert.NoError(t, err)
}
