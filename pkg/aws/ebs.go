package aws

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/younsl/volreaper/internal/models"
	"github.com/younsl/volreaper/pkg/utils"
)

const (
	volumePageSize   = 500
	snapshotPageSize = 1000

	errCodeVolumeNotFound   = "InvalidVolume.NotFound"
	errCodeSnapshotNotFound = "InvalidSnapshot.NotFound"
)

var (
	// ErrVolumeNotFound is returned when a volume no longer exists
	ErrVolumeNotFound = errors.New("volume not found")

	// ErrSnapshotNotFound is returned when a snapshot no longer exists
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// EC2API is the subset of the EC2 client used for volume lifecycle management
type EC2API interface {
	ec2.DescribeVolumesAPIClient
	ec2.DescribeSnapshotsAPIClient
	CreateTags(ctx context.Context, params *ec2.CreateTagsInput, optFns ...func(*ec2.Options)) (*ec2.CreateTagsOutput, error)
	DeleteTags(ctx context.Context, params *ec2.DeleteTagsInput, optFns ...func(*ec2.Options)) (*ec2.DeleteTagsOutput, error)
	CreateSnapshot(ctx context.Context, params *ec2.CreateSnapshotInput, optFns ...func(*ec2.Options)) (*ec2.CreateSnapshotOutput, error)
	DeleteVolume(ctx context.Context, params *ec2.DeleteVolumeInput, optFns ...func(*ec2.Options)) (*ec2.DeleteVolumeOutput, error)
	DeleteSnapshot(ctx context.Context, params *ec2.DeleteSnapshotInput, optFns ...func(*ec2.Options)) (*ec2.DeleteSnapshotOutput, error)
}

// EBSClient struct for EBS client
type EBSClient struct {
	client EC2API
	region string
}

// NewEBSClient creates a new EBSClient from a loaded AWS config
func NewEBSClient(cfg aws.Config) *EBSClient {
	return NewEBSClientFromAPI(ec2.NewFromConfig(cfg), cfg.Region)
}

// NewEBSClientFromAPI wraps an existing EC2 API implementation
func NewEBSClientFromAPI(api EC2API, region string) *EBSClient {
	return &EBSClient{
		client: api,
		region: region,
	}
}

// ListVolumes returns every EBS volume in the region, following pagination
func (c *EBSClient) ListVolumes(ctx context.Context) ([]models.VolumeInfo, error) {
	paginator := ec2.NewDescribeVolumesPaginator(c.client, &ec2.DescribeVolumesInput{},
		func(o *ec2.DescribeVolumesPaginatorOptions) {
			o.Limit = volumePageSize
		})

	var volumes []models.VolumeInfo
	pageCount := 0
	for paginator.HasMorePages() {
		pageCount++
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("error describing volumes in %s (page %d): %w", c.region, pageCount, err)
		}
		for _, volume := range page.Volumes {
			volumes = append(volumes, c.toVolumeInfo(volume))
		}
	}

	return volumes, nil
}

// GetVolume returns the live state of a single volume.
// ErrVolumeNotFound is returned if the volume no longer exists.
func (c *EBSClient) GetVolume(ctx context.Context, volumeID string) (*models.VolumeInfo, error) {
	result, err := c.client.DescribeVolumes(ctx, &ec2.DescribeVolumesInput{
		VolumeIds: []string{volumeID},
	})
	if err != nil {
		if apiErrorCode(err) == errCodeVolumeNotFound {
			return nil, fmt.Errorf("%w: %s", ErrVolumeNotFound, volumeID)
		}
		return nil, fmt.Errorf("error describing volume %s: %w", volumeID, err)
	}
	if len(result.Volumes) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrVolumeNotFound, volumeID)
	}

	info := c.toVolumeInfo(result.Volumes[0])
	return &info, nil
}

// SetTag creates or overwrites a single tag on a volume
func (c *EBSClient) SetTag(ctx context.Context, volumeID, key, value string) error {
	_, err := c.client.CreateTags(ctx, &ec2.CreateTagsInput{
		Resources: []string{volumeID},
		Tags: []types.Tag{{
			Key:   aws.String(key),
			Value: aws.String(value),
		}},
	})
	if err != nil {
		return fmt.Errorf("error tagging volume %s with %s: %w", volumeID, key, err)
	}
	return nil
}

// RemoveTag deletes a tag from a volume regardless of its value
func (c *EBSClient) RemoveTag(ctx context.Context, volumeID, key string) error {
	_, err := c.client.DeleteTags(ctx, &ec2.DeleteTagsInput{
		Resources: []string{volumeID},
		Tags:      []types.Tag{{Key: aws.String(key)}},
	})
	if err != nil {
		return fmt.Errorf("error removing tag %s from volume %s: %w", key, volumeID, err)
	}
	return nil
}

// CreateSnapshot snapshots a volume and tags the snapshot at creation time.
// It returns the new snapshot ID.
func (c *EBSClient) CreateSnapshot(ctx context.Context, volumeID, description string, tags map[string]string) (string, error) {
	input := &ec2.CreateSnapshotInput{
		VolumeId:    aws.String(volumeID),
		Description: aws.String(description),
	}
	if len(tags) > 0 {
		input.TagSpecifications = []types.TagSpecification{{
			ResourceType: types.ResourceTypeSnapshot,
			Tags:         utils.ConvertToEC2Tags(tags),
		}}
	}

	result, err := c.client.CreateSnapshot(ctx, input)
	if err != nil {
		if apiErrorCode(err) == errCodeVolumeNotFound {
			return "", fmt.Errorf("error creating snapshot: %w: %s", ErrVolumeNotFound, volumeID)
		}
		return "", fmt.Errorf("error creating snapshot of %s: %w", volumeID, err)
	}

	snapshotID := aws.ToString(result.SnapshotId)
	if snapshotID == "" {
		return "", fmt.Errorf("error creating snapshot of %s: empty snapshot id", volumeID)
	}
	return snapshotID, nil
}

// DeleteVolume deletes an EBS volume
func (c *EBSClient) DeleteVolume(ctx context.Context, volumeID string) error {
	_, err := c.client.DeleteVolume(ctx, &ec2.DeleteVolumeInput{
		VolumeId: aws.String(volumeID),
	})
	if err != nil {
		if apiErrorCode(err) == errCodeVolumeNotFound {
			return fmt.Errorf("error deleting volume: %w: %s", ErrVolumeNotFound, volumeID)
		}
		return fmt.Errorf("error deleting volume %s: %w", volumeID, err)
	}
	return nil
}

// ListSnapshots returns every snapshot owned by the account, following pagination
func (c *EBSClient) ListSnapshots(ctx context.Context) ([]models.SnapshotInfo, error) {
	paginator := ec2.NewDescribeSnapshotsPaginator(c.client, &ec2.DescribeSnapshotsInput{
		OwnerIds: []string{"self"},
	}, func(o *ec2.DescribeSnapshotsPaginatorOptions) {
		o.Limit = snapshotPageSize
	})

	var snapshots []models.SnapshotInfo
	pageCount := 0
	for paginator.HasMorePages() {
		pageCount++
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("error describing snapshots in %s (page %d): %w", c.region, pageCount, err)
		}
		for _, snap := range page.Snapshots {
			info := models.SnapshotInfo{
				SnapshotID:  aws.ToString(snap.SnapshotId),
				VolumeID:    aws.ToString(snap.VolumeId),
				Description: aws.ToString(snap.Description),
				State:       string(snap.State),
				Tags:        utils.GetTagsMap(snap.Tags),
			}
			if snap.StartTime != nil {
				info.StartTime = *snap.StartTime
			}
			snapshots = append(snapshots, info)
		}
	}

	return snapshots, nil
}

// DeleteSnapshot deletes an EBS snapshot
func (c *EBSClient) DeleteSnapshot(ctx context.Context, snapshotID string) error {
	_, err := c.client.DeleteSnapshot(ctx, &ec2.DeleteSnapshotInput{
		SnapshotId: aws.String(snapshotID),
	})
	if err != nil {
		if apiErrorCode(err) == errCodeSnapshotNotFound {
			return fmt.Errorf("error deleting snapshot: %w: %s", ErrSnapshotNotFound, snapshotID)
		}
		return fmt.Errorf("error deleting snapshot %s: %w", snapshotID, err)
	}
	return nil
}

func (c *EBSClient) toVolumeInfo(volume types.Volume) models.VolumeInfo {
	info := models.VolumeInfo{
		VolumeID:         aws.ToString(volume.VolumeId),
		Name:             utils.GetName(volume.Tags),
		Size:             int(aws.ToInt32(volume.Size)),
		VolumeType:       string(volume.VolumeType),
		State:            string(volume.State),
		Region:           c.region,
		AvailabilityZone: aws.ToString(volume.AvailabilityZone),
		Tags:             utils.GetTagsMap(volume.Tags),
	}
	if volume.CreateTime != nil {
		info.CreationTime = *volume.CreateTime
	}
	return info
}
