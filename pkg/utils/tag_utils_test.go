package utils

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTagsMap(t *testing.T) {
	tags := []types.Tag{
		{Key: aws.String("Name"), Value: aws.String("data")},
		{Key: aws.String("empty"), Value: nil},
		{Key: nil, Value: aws.String("orphan")},
	}

	got := GetTagsMap(tags)
	assert.Equal(t, map[string]string{"Name": "data", "empty": ""}, got)
	assert.Equal(t, "data", GetName(tags))
	assert.Equal(t, "", GetTagValue(tags, "missing"))
}

func TestGetTagsMap_NilSlice(t *testing.T) {
	got := GetTagsMap(nil)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestConvertToEC2Tags_SortedByKey(t *testing.T) {
	got := ConvertToEC2Tags(map[string]string{"b": "2", "a": "1", "c": "3"})
	require.Len(t, got, 3)
	assert.Equal(t, "a", aws.ToString(got[0].Key))
	assert.Equal(t, "b", aws.ToString(got[1].Key))
	assert.Equal(t, "c", aws.ToString(got[2].Key))
	assert.Equal(t, "3", aws.ToString(got[2].Value))
}

func TestHasTagValueFold(t *testing.T) {
	tests := []struct {
		name string
		tags map[string]string
		want bool
	}{
		{"exact value", map[string]string{"env": "do-not-delete"}, true},
		{"mixed case value", map[string]string{"keep": "Do-Not-Delete"}, true},
		{"key only", map[string]string{"do-not-delete": "yes"}, false},
		{"substring is not a match", map[string]string{"note": "please do-not-delete this"}, false},
		{"no tags", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasTagValueFold(tt.tags, "do-not-delete"))
		})
	}
}

func TestCopyTags(t *testing.T) {
	orig := map[string]string{"a": "1"}
	cp := CopyTags(orig)
	cp["b"] = "2"
	assert.NotContains(t, orig, "b")
	assert.NotNil(t, CopyTags(nil))
	assert.True(t, HasTag(cp, "b"))
}
