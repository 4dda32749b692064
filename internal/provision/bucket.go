// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package provision

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/go-git/go-git/v5"
	"github.com/google/uuid"

	"github.com/smartkitchen/skhctl/internal/log"
)

// AppPrefix is the key prefix the user data script copies from.
const AppPrefix = "myapp"

// CloneFunc fetches the repository at url into dir.
type CloneFunc func(ctx context.Context, url, dir string) error

// GitClone is a shallow, single-branch clone.
func GitClone(ctx context.Context, url, dir string) error {
	_, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:          url,
		Depth:        1,
		SingleBranch: true,
	})
	return err
}

// BucketName returns "skh-app-<uuid>".
func BucketName() string {
	return "skh-app-" + uuid.NewString()
}

func (p *Provisioner) createBucket(ctx context.Context, rep *Report) error {
	name := p.Params.BucketName
	if name == "" {
		name = BucketName()
	}

	in := &s3.CreateBucketInput{Bucket: awsv2.String(name)}
	// us-east-1 rejects an explicit location constraint.
	if p.Clients.Region != "" && p.Clients.Region != "us-east-1" {
		in.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(p.Clients.Region),
		}
	}
	if _, err := p.Clients.S3.CreateBucket(ctx, in); err != nil {
		return FriendlyAWS(err, p.errCtx("create bucket "+name, "bucket"))
	}
	rep.BucketName = name
	log.Infof("S3 bucket created: %s", name)

	if p.Params.GitRepoURL == "" {
		log.Warnf("GIT_REPO_URL is not set, bucket %s left empty", name)
		return nil
	}

	n, err := p.uploadRepo(ctx, name)
	rep.UploadedObjects = n
	if err != nil {
		return err
	}
	log.Infof("Uploaded %d files to S3 bucket: %s", n, name)
	return nil
}

// uploadRepo clones the application repository and uploads every file outside
// .git under AppPrefix.
func (p *Provisioner) uploadRepo(ctx context.Context, bucket string) (int, error) {
	dir, err := os.MkdirTemp("", "skh-app-*")
	if err != nil {
		return 0, err
	}
	defer os.RemoveAll(dir)

	log.Infof("Cloning %s", p.Params.GitRepoURL)
	if err := p.Clone(ctx, p.Params.GitRepoURL, dir); err != nil {
		return 0, fmt.Errorf("failed to clone %s: %w", p.Params.GitRepoURL, err)
	}

	count := 0
	err = filepath.WalkDir(dir, func(fpath string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(dir, fpath)
		if err != nil {
			return err
		}
		key := path.Join(AppPrefix, filepath.ToSlash(rel))

		f, err := os.Open(fpath)
		if err != nil {
			return err
		}
		defer f.Close()

		if _, err := p.Clients.S3.PutObject(ctx, &s3.PutObjectInput{
			Bucket: awsv2.String(bucket),
			Key:    awsv2.String(key),
			Body:   f,
		}); err != nil {
			return FriendlyAWS(err, p.errCtx("upload "+key, "object"))
		}
		log.Debugf("uploaded s3://%s/%s", bucket, key)
		count++
		return nil
	})
	return count, err
}

// emptyBucket deletes every object so the bucket itself can be deleted.
func (p *Provisioner) emptyBucket(ctx context.Context, bucket string) error {
	pager := s3.NewListObjectsV2Paginator(p.Clients.S3, &s3.ListObjectsV2Input{Bucket: awsv2.String(bucket)})
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return FriendlyAWS(err, p.errCtx("list objects in "+bucket, "object"))
		}
		if len(page.Contents) == 0 {
			continue
		}

		ids := make([]s3types.ObjectIdentifier, 0, len(page.Contents))
		for _, obj := range page.Contents {
			ids = append(ids, s3types.ObjectIdentifier{Key: obj.Key})
		}
		if _, err := p.Clients.S3.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: awsv2.String(bucket),
			Delete: &s3types.Delete{Objects: ids, Quiet: awsv2.Bool(true)},
		}); err != nil {
			return FriendlyAWS(err, p.errCtx("delete objects in "+bucket, "object"))
		}
	}
	return nil
}
