package aws

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
)

// fakeEC2 serves volumes and snapshots in fixed-size pages
type fakeEC2 struct {
	volumes   []types.Volume
	snapshots []types.Snapshot
	pageSize  int

	describeVolumeCalls int
	lastSnapshotOwners  []string
	createTags          []*ec2.CreateTagsInput
	deleteTags          []*ec2.DeleteTagsInput
	createSnapshots     []*ec2.CreateSnapshotInput
	deletedVolumes      []string
	deletedSnapshots    []string

	err error
}

func notFound(code string) error {
	return &smithy.GenericAPIError{Code: code, Message: "not found"}
}

func pageBounds(token *string, pageSize, total int) (int, int, *string) {
	start := 0
	if token != nil {
		fmt.Sscanf(*token, "%d", &start)
	}
	end := start + pageSize
	if pageSize <= 0 || end > total {
		end = total
	}
	var next *string
	if end < total {
		next = aws.String(fmt.Sprintf("%d", end))
	}
	return start, end, next
}

func (f *fakeEC2) DescribeVolumes(_ context.Context, in *ec2.DescribeVolumesInput, _ ...func(*ec2.Options)) (*ec2.DescribeVolumesOutput, error) {
	f.describeVolumeCalls++
	if f.err != nil {
		return nil, f.err
	}
	if len(in.VolumeIds) > 0 {
		var out []types.Volume
		for _, v := range f.volumes {
			for _, id := range in.VolumeIds {
				if aws.ToString(v.VolumeId) == id {
					out = append(out, v)
				}
			}
		}
		if len(out) == 0 {
			return nil, notFound("InvalidVolume.NotFound")
		}
		return &ec2.DescribeVolumesOutput{Volumes: out}, nil
	}
	start, end, next := pageBounds(in.NextToken, f.pageSize, len(f.volumes))
	return &ec2.DescribeVolumesOutput{Volumes: f.volumes[start:end], NextToken: next}, nil
}

func (f *fakeEC2) DescribeSnapshots(_ context.Context, in *ec2.DescribeSnapshotsInput, _ ...func(*ec2.Options)) (*ec2.DescribeSnapshotsOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastSnapshotOwners = in.OwnerIds
	start, end, next := pageBounds(in.NextToken, f.pageSize, len(f.snapshots))
	return &ec2.DescribeSnapshotsOutput{Snapshots: f.snapshots[start:end], NextToken: next}, nil
}

func (f *fakeEC2) CreateTags(_ context.Context, in *ec2.CreateTagsInput, _ ...func(*ec2.Options)) (*ec2.CreateTagsOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.createTags = append(f.createTags, in)
	return &ec2.CreateTagsOutput{}, nil
}

func (f *fakeEC2) DeleteTags(_ context.Context, in *ec2.DeleteTagsInput, _ ...func(*ec2.Options)) (*ec2.DeleteTagsOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deleteTags = append(f.deleteTags, in)
	return &ec2.DeleteTagsOutput{}, nil
}

func (f *fakeEC2) CreateSnapshot(_ context.Context, in *ec2.CreateSnapshotInput, _ ...func(*ec2.Options)) (*ec2.CreateSnapshotOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.createSnapshots = append(f.createSnapshots, in)
	return &ec2.CreateSnapshotOutput{SnapshotId: aws.String(fmt.Sprintf("snap-%d", len(f.createSnapshots)))}, nil
}

func (f *fakeEC2) DeleteVolume(_ context.Context, in *ec2.DeleteVolumeInput, _ ...func(*ec2.Options)) (*ec2.DeleteVolumeOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deletedVolumes = append(f.deletedVolumes, aws.ToString(in.VolumeId))
	return &ec2.DeleteVolumeOutput{}, nil
}

func (f *fakeEC2) DeleteSnapshot(_ context.Context, in *ec2.DeleteSnapshotInput, _ ...func(*ec2.Options)) (*ec2.DeleteSnapshotOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deletedSnapshots = append(f.deletedSnapshots, aws.ToString(in.SnapshotId))
	return &ec2.DeleteSnapshotOutput{}, nil
}

// fakeS3 keeps objects in memory and lists them in sorted pages
type fakeS3 struct {
	objects  map[string][]byte
	pageSize int
	puts     []*s3.PutObjectInput
	err      error
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if f.err != nil {
		return nil, f.err
	}
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	start, end, next := pageBounds(in.ContinuationToken, f.pageSize, len(keys))
	out := &s3.ListObjectsV2Output{NextContinuationToken: next, IsTruncated: aws.Bool(next != nil)}
	for _, k := range keys[start:end] {
		out.Contents = append(out.Contents, s3types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if f.objects == nil {
		f.objects = make(map[string][]byte)
	}
	f.objects[aws.ToString(in.Key)] = body
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

type fakeSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakeSNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, in)
	return &sns.PublishOutput{MessageId: aws.String("msg-1")}, nil
}

type fakeSTS struct {
	account string
	err     error
}

func (f *fakeSTS) GetCallerIdentity(_ context.Context, _ *sts.GetCallerIdentityInput, _ ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &sts.GetCallerIdentityOutput{Account: aws.String(f.account)}, nil
}
