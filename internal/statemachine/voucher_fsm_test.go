package statemachine

import (
	"context"
	"testing"

	"github.com/ledgerbooks/ledgerbooks-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoucherFSM_FullLifecycle(t *testing.T) {
	ctx := context.Background()
	voucher := &models.VoucherHeader{Status: models.VoucherStatusDraft}

	fsm := NewVoucherFSM(voucher)
	require.NoError(t, fsm.Submit(ctx))
	assert.Equal(t, models.VoucherStatusSubmitted, voucher.Status)

	fsm = NewVoucherFSM(voucher)
	require.NoError(t, fsm.Approve(ctx))
	assert.Equal(t, models.VoucherStatusApproved, voucher.Status)

	fsm = NewVoucherFSM(voucher)
	require.NoError(t, fsm.Post(ctx))
	assert.Equal(t, models.VoucherStatusPosted, voucher.Status)

	fsm = NewVoucherFSM(voucher)
	require.NoError(t, fsm.Unpost(ctx))
	assert.Equal(t, models.VoucherStatusApproved, voucher.Status)
}

func TestVoucherFSM_IllegalTransitions(t *testing.T) {
	ctx := context.Background()

	// A draft cannot be approved or posted directly.
	voucher := &models.VoucherHeader{Status: models.VoucherStatusDraft}
	assert.Error(t, NewVoucherFSM(voucher).Approve(ctx))
	assert.Error(t, NewVoucherFSM(voucher).Post(ctx))
	assert.Equal(t, models.VoucherStatusDraft, voucher.Status)

	// A posted voucher cannot be submitted or canceled.
	voucher = &models.VoucherHeader{Status: models.VoucherStatusPosted}
	assert.Error(t, NewVoucherFSM(voucher).Submit(ctx))
	assert.Error(t, NewVoucherFSM(voucher).Cancel(ctx))
	assert.Equal(t, models.VoucherStatusPosted, voucher.Status)

	// Terminal states stay terminal.
	voucher = &models.VoucherHeader{Status: models.VoucherStatusVoided}
	assert.Error(t, NewVoucherFSM(voucher).Submit(ctx))
	voucher = &models.VoucherHeader{Status: models.VoucherStatusCanceled}
	assert.Error(t, NewVoucherFSM(voucher).Submit(ctx))
}

func TestVoucherFSM_CancelBeforePosting(t *testing.T) {
	ctx := context.Background()
	for _, status := range []string{
		models.VoucherStatusDraft,
		models.VoucherStatusSubmitted,
		models.VoucherStatusApproved,
	} {
		voucher := &models.VoucherHeader{Status: status}
		require.NoError(t, NewVoucherFSM(voucher).Cancel(ctx), "from %s", status)
		assert.Equal(t, models.VoucherStatusCanceled, voucher.Status)
	}
}

func TestVoucherFSM_UnpostBlockedByPayments(t *testing.T) {
	ctx := context.Background()
	voucher := &models.VoucherHeader{
		Status:     models.VoucherStatusPosted,
		AmountPaid: 25,
	}
	assert.Error(t, NewVoucherFSM(voucher).Unpost(ctx))
	assert.Error(t, NewVoucherFSM(voucher).Void(ctx))
	assert.Equal(t, models.VoucherStatusPosted, voucher.Status)
}

func TestVoucherFSM_ReopenOnEdit(t *testing.T) {
	ctx := context.Background()
	voucher := &models.VoucherHeader{Status: models.VoucherStatusApproved}
	require.NoError(t, NewVoucherFSM(voucher).Reopen(ctx))
	assert.Equal(t, models.VoucherStatusDraft, voucher.Status)

	voucher = &models.VoucherHeader{Status: models.VoucherStatusDraft}
	assert.Error(t, NewVoucherFSM(voucher).Reopen(ctx))
}

func TestVoucherFSM_Can(t *testing.T) {
	voucher := &models.VoucherHeader{Status: models.VoucherStatusSubmitted}
	fsm := NewVoucherFSM(voucher)
	assert.True(t, fsm.Can("approve"))
	assert.True(t, fsm.Can("cancel"))
	assert.False(t, fsm.Can("post"))
	assert.Equal(t, models.VoucherStatusSubmitted, fsm.Current())
}
