package pipeline_test

import (
	"testing"

	"github.com/Greenstand/domain-migration-scripts/config"
	"github.com/Greenstand/domain-migration-scripts/pkg/pipeline"
	"github.com/stretchr/testify/assert"
)

func TestLegacyCapturesQuery(t *testing.T) {
	query, args := pipeline.LegacyCapturesQuery(config.DefaultTables(), pipeline.Options{}).Build().Build()

	assert.Equal(t,
		"SELECT t.id, t.uuid, t.planter_id, t.planter_identifier, t.planter_photo_url, t.image_url, t.lat, t.lon, "+
			"t.gps_accuracy, t.morphology, t.age, t.note, t.token_id, t.time_created, t.time_updated "+
			"FROM public.trees AS t LEFT JOIN treetracker.capture AS c ON t.id = c.reference_id "+
			"WHERE t.active = $1 AND t.approved = $2 AND t.image_url IS NOT NULL AND c.reference_id IS NULL "+
			"ORDER BY t.id ASC",
		query)
	assert.Equal(t, []any{true, true}, args)
}

func TestApprovedCapturesQuery(t *testing.T) {
	opts := pipeline.Options{ExcludeIDs: []int{2463005}, Limit: 100000}
	query, args := pipeline.ApprovedCapturesQuery(config.DefaultTables(), opts).Build().Build()

	assert.Contains(t, query, "FROM field_data.raw_capture AS rc "+
		"INNER JOIN field_data.session AS s ON rc.session_id = s.id "+
		"INNER JOIN field_data.wallet_registration AS wr ON s.originating_wallet_registration_id = wr.id "+
		"INNER JOIN public.trees AS pt ON rc.id::text = pt.uuid "+
		"LEFT JOIN treetracker.capture AS tc ON rc.id = tc.id")
	assert.Contains(t, query, "pt.id AS tree_id, tc.id AS existing_capture_id")
	assert.Contains(t, query, "(rc.status = $1 AND tc.id IS NULL)")
	assert.Contains(t, query, "(rc.status <> $2 AND (pt.active = $3 AND pt.approved = $4) AND tc.id IS NULL)")
	assert.Contains(t, query, "((pt.token_id IS NOT NULL AND tc.token_id IS NULL) OR (pt.token_id IS NULL AND tc.token_id IS NOT NULL))")
	assert.Contains(t, query, "rc.reference_id NOT IN ($7)")
	assert.Contains(t, query, "ORDER BY pt.id ASC LIMIT $8")
	assert.Equal(t, []any{"approved", "approved", true, true, true, true, 2463005, 100000}, args)
}

func TestDeviceConfigurationsQuery(t *testing.T) {
	query, args := pipeline.DeviceConfigurationsQuery(config.DefaultTables(), pipeline.Options{}).Build().Build()

	assert.Contains(t, query, "FROM public.devices AS d LEFT JOIN field_data.device_configuration AS dc ON dc.reference_id = d.id WHERE dc.id IS NULL ORDER BY d.id ASC")
	assert.Empty(t, args)
}

func TestPlantersQuery(t *testing.T) {
	query, args := pipeline.PlantersQuery(config.DefaultTables(), pipeline.Options{}).Build().Build()

	assert.Contains(t, query, "FROM public.planter AS p LEFT JOIN treetracker.grower_account AS ga ON (ga.wallet = btrim(p.email) OR ga.wallet = btrim(p.phone))")
	assert.Contains(t, query, "(ga.id IS NULL AND (btrim(p.email) <> $1 OR btrim(p.phone) <> $2))")
	assert.Contains(t, query, "ga.id AS grower_account_id, ga.organization_id AS account_organization_id")
	assert.Contains(t, query, "(ga.id IS NOT NULL AND p.organization_id IS NOT NULL AND ga.organization_id IS NULL)")
	assert.Equal(t, []any{"", ""}, args)
}

func TestBuild(t *testing.T) {
	assert.Equal(t, []string{"approved-captures", "device-configurations", "legacy-captures", "planters"}, pipeline.Names())

	_, err := pipeline.Build("trees", nil, config.DefaultTables(), pipeline.Options{}, nil)
	assert.ErrorContains(t, err, `unknown pipeline "trees"`)
}
