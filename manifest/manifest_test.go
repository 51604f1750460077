package manifest

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	copytables "github.com/seldebrings/sls-copy-stack-tables"
	"github.com/seldebrings/sls-copy-stack-tables/errors"
)

const serverlessYAML = `
service: users-api

provider:
  name: aws
  region: eu-west-1
  stage: ${opt:stage, 'dev'}

custom:
  stage: ${opt:stage, self:provider.stage}
  copyDataDeploy:
    sourceStage: dev
    targetStage: staging
    overwriteAllData: true

resources:
  Resources:
    UsersTable:
      Type: AWS::DynamoDB::Table
      Properties:
        TableName: users-${self:custom.stage}
        BillingMode: PAY_PER_REQUEST
    OrdersTable:
      Type: AWS::DynamoDB::Table
      Properties:
        TableName: orders-${self:custom.stage}
    GeneratedTable:
      Type: AWS::DynamoDB::Table
      Properties:
        TableName: !Sub "audit-${AWS::StackName}"
    UnnamedTable:
      Type: AWS::DynamoDB::Table
      Properties:
        BillingMode: PAY_PER_REQUEST
    UploadsBucket:
      Type: AWS::S3::Bucket
      Properties:
        BucketName: uploads-${self:custom.stage}
`

const cloudFormationJSON = `{
  "AWSTemplateFormatVersion": "2010-09-09",
  "Resources": {
    "Sessions": {
      "Type": "AWS::DynamoDB::Table",
      "Properties": {"TableName": "sessions-${stage}"}
    },
    "Events": {
      "Type": "AWS::DynamoDB::Table",
      "Properties": {"TableName": {"Fn::Sub": "events-${Stage}"}}
    },
    "Queue": {
      "Type": "AWS::SQS::Queue",
      "Properties": {"QueueName": "jobs-${stage}"}
    }
  }
}`

func TestParse_Serverless(t *testing.T) {
	m, err := Parse([]byte(serverlessYAML))
	require.NoError(t, err)

	assert.Equal(t, "users-api", m.Name())
	assert.Equal(t, "eu-west-1", m.Region())
	assert.Equal(t, []string{"orders-${self:custom.stage}", "users-${self:custom.stage}"}, m.Tables())
	assert.Equal(t, "${self:custom.stage}", m.StageToken())

	assert.Equal(t, []SkippedResource{
		{ID: "GeneratedTable", Reason: "TableName is not a literal string"},
		{ID: "UnnamedTable", Reason: "TableName is not set"},
	}, m.Skipped())

	cd := m.CopyDataDeploy()
	require.NotNil(t, cd)
	assert.Equal(t, CopyDataDeploy{SourceStage: "dev", TargetStage: "staging", OverwriteAllData: true}, *cd)
}

func TestParse_CloudFormationJSON(t *testing.T) {
	m, err := Parse([]byte(cloudFormationJSON))
	require.NoError(t, err)

	assert.Equal(t, []string{"sessions-${stage}"}, m.Tables())
	assert.Equal(t, copytables.DefaultStageToken, m.StageToken())
	require.Len(t, m.Skipped(), 1)
	assert.Equal(t, "Events", m.Skipped()[0].ID)
	assert.Nil(t, m.CopyDataDeploy())
}

func TestManifest_Tables(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []string
	}{
		{
			name: "empty document",
			doc:  "",
			want: []string{},
		},
		{
			name: "no resources",
			doc:  "service: api\n",
			want: []string{},
		},
		{
			name: "only non table resources",
			doc: `
Resources:
  Bucket:
    Type: AWS::S3::Bucket
`,
			want: []string{},
		},
		{
			name: "duplicate names across layouts",
			doc: `
resources:
  Resources:
    A:
      Type: AWS::DynamoDB::Table
      Properties:
        TableName: b-${stage}
    B:
      Type: AWS::DynamoDB::Table
      Properties:
        TableName: a-${stage}
Resources:
  C:
    Type: AWS::DynamoDB::Table
    Properties:
      TableName: a-${stage}
`,
			want: []string{"a-${stage}", "b-${stage}"},
		},
		{
			name: "resources as list",
			doc: `
resources:
  - ${file(resources/buckets.yml)}
  - Resources:
      Users:
        Type: AWS::DynamoDB::Table
        Properties:
          TableName: users-${sls:stage}
  - Resources:
      Orders:
        Type: AWS::DynamoDB::Table
        Properties:
          TableName: orders-${sls:stage}
`,
			want: []string{"orders-${sls:stage}", "users-${sls:stage}"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse([]byte(tt.doc))
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Tables())
		})
	}
}

func TestManifest_StageToken(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "literal custom stage",
			doc: `
custom:
  stage: dev
Resources:
  T:
    Type: AWS::DynamoDB::Table
    Properties:
      TableName: users-dev
`,
			want: "dev",
		},
		{
			name: "provider stage variable",
			doc: `
Resources:
  T:
    Type: AWS::DynamoDB::Table
    Properties:
      TableName: users-${self:provider.stage}
`,
			want: "${self:provider.stage}",
		},
		{
			name: "no tables",
			doc:  "service: api\n",
			want: copytables.DefaultStageToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse([]byte(tt.doc))
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.StageToken())
		})
	}
}

func TestManifest_DeployRequest(t *testing.T) {
	m, err := Parse([]byte(serverlessYAML))
	require.NoError(t, err)

	req, ok := m.DeployRequest()
	require.True(t, ok)
	assert.Equal(t, copytables.Request{
		SourceStage:      "dev",
		TargetStage:      "staging",
		OverwriteAllData: true,
		StageToken:       "${self:custom.stage}",
		Tables:           []string{"orders-${self:custom.stage}", "users-${self:custom.stage}"},
	}, req)
	assert.NoError(t, req.Validate())

	empty, err := Parse([]byte("service: api\n"))
	require.NoError(t, err)
	_, ok = empty.DeployRequest()
	assert.False(t, ok)
}

func TestManifest_ServiceAndRegionReferences(t *testing.T) {
	m, err := Parse([]byte(`
service: api
provider:
  region: eu-west-1
custom:
  copyDataDeploy:
    sourceStage: dev
    targetStage: prod
resources:
  Resources:
    Users:
      Type: AWS::DynamoDB::Table
      Properties:
        TableName: ${self:service}-users-${sls:stage}
    Audit:
      Type: AWS::DynamoDB::Table
      Properties:
        TableName: ${self:service}-audit-${self:provider.region}-${sls:stage}
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"api-audit-eu-west-1-${sls:stage}", "api-users-${sls:stage}"}, m.Tables())
	assert.Equal(t, "${sls:stage}", m.StageToken())
	assert.Empty(t, m.Skipped())

	req, ok := m.DeployRequest()
	require.True(t, ok)
	require.NoError(t, req.Validate())
	d := copytables.Describe(req.Tables[1], req.StageToken, req.SourceStage, req.TargetStage)
	assert.Equal(t, "api-users-dev", d.Source)
	assert.Equal(t, "api-users-prod", d.Target)
}

func TestManifest_UnresolvedReferencesAreSkipped(t *testing.T) {
	m, err := Parse([]byte(`
service: ${env:SERVICE}
provider:
  region: ${opt:region, 'eu-west-1'}
resources:
  - ${file(resources/tables.yml)}
  - Resources:
      Users:
        Type: AWS::DynamoDB::Table
        Properties:
          TableName: users-${sls:stage}
      Prefixed:
        Type: AWS::DynamoDB::Table
        Properties:
          TableName: ${self:custom.prefix}-orders-${sls:stage}
      Named:
        Type: AWS::DynamoDB::Table
        Properties:
          TableName: ${self:service}-events-${sls:stage}
      Regional:
        Type: AWS::DynamoDB::Table
        Properties:
          TableName: cache-${self:provider.region}-${sls:stage}
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"users-${sls:stage}"}, m.Tables())
	assert.Equal(t, "${sls:stage}", m.StageToken())

	skipped := m.Skipped()
	require.Len(t, skipped, 4)
	assert.Equal(t, SkippedResource{
		ID:     "${file(resources/tables.yml)}",
		Reason: "resources from a referenced file are not read",
	}, skipped[0])
	for _, s := range skipped[1:] {
		assert.Contains(t, s.Reason, "unresolved variable")
	}
	assert.Equal(t, []string{"Named", "Prefixed", "Regional"},
		[]string{skipped[1].ID, skipped[2].ID, skipped[3].ID})
	assert.Contains(t, skipped[2].Reason, "${self:custom.prefix}-orders-${sls:stage}")
}

func TestManifest_RepeatedStageTokenIsUnresolved(t *testing.T) {
	m, err := Parse([]byte(`
Resources:
  T:
    Type: AWS::DynamoDB::Table
    Properties:
      TableName: ${sls:stage}-users-${sls:stage}
`))
	require.NoError(t, err)

	assert.Empty(t, m.Tables())
	require.Len(t, m.Skipped(), 1)
	assert.Equal(t, "T", m.Skipped()[0].ID)
}

func TestParse_ServiceAsMapping(t *testing.T) {
	m, err := Parse([]byte("service:\n  name: legacy-api\n"))
	require.NoError(t, err)
	assert.Equal(t, "legacy-api", m.Name())
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("resources: [unterminated"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "serverless.yml", []byte(serverlessYAML), 0o644))
	require.NoError(t, util.WriteFile(fs, "infra/template.json", []byte(cloudFormationJSON), 0o644))
	require.NoError(t, util.WriteFile(fs, "broken.yml", []byte("service: [x"), 0o644))

	t.Run("default path", func(t *testing.T) {
		m, err := Load(fs, "")
		require.NoError(t, err)
		assert.Len(t, m.Tables(), 2)
	})

	t.Run("explicit path", func(t *testing.T) {
		m, err := Load(fs, "infra/template.json")
		require.NoError(t, err)
		assert.Equal(t, []string{"sessions-${stage}"}, m.Tables())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(fs, "nope.yml")
		require.Error(t, err)
		assert.True(t, errors.IsConfigError(err))
		assert.Contains(t, err.Error(), "nope.yml")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := Load(fs, "broken.yml")
		require.Error(t, err)
		assert.True(t, errors.IsConfigError(err))
	})
}
