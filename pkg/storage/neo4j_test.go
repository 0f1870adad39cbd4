package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vargamick/poster-memento-sub005/pkg/types"
)

func TestCollectAllPagesDrainsEveryBatch(t *testing.T) {
	total := searchBatchSize*2 + 7
	all := make([]*types.Entity, total)
	for i := range all {
		all[i] = &types.Entity{Name: fmt.Sprintf("e%05d", i)}
	}

	var calls int
	out, err := collectAllPages(func(skip, limit int) ([]*types.Entity, error) {
		calls++
		if skip >= total {
			return nil, nil
		}
		end := skip + limit
		if end > total {
			end = total
		}
		return all[skip:end], nil
	})
	require.NoError(t, err)

	require.Len(t, out, total)
	assert.Equal(t, 3, calls)
	assert.Equal(t, all[0], out[0])
	assert.Equal(t, all[total-1], out[total-1])
}

func TestCollectAllPagesStopsOnShortFirstBatch(t *testing.T) {
	out, err := collectAllPages(func(skip, limit int) ([]*types.Entity, error) {
		if skip > 0 {
			t.Fatal("short batch must end the scan")
		}
		return []*types.Entity{{Name: "only"}}, nil
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
}

func TestCollectAllPagesPropagatesErrors(t *testing.T) {
	boom := errors.New("connection reset")
	_, err := collectAllPages(func(skip, limit int) ([]*types.Entity, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}
