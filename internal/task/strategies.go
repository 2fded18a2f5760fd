package task

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/phrazzld/launchpad/internal/domain"
	"github.com/phrazzld/launchpad/internal/platform/logger"
)

// runDownload handles both full downloads and incremental updates, then
// verifies the result once.
func (o *Orchestrator) runDownload(ctx context.Context, runID uuid.UUID, desc Description) error {
	req := DownloadRequest{
		Endpoint:  desc.Endpoint(),
		Folder:    desc.Folder(),
		Languages: desc.Languages(),
		Region:    desc.Region(),
	}
	var err error
	if desc.Kind() == KindUpdate {
		err = o.exec.StartUpdate(ctx, req)
	} else {
		err = o.exec.StartDownload(ctx, req)
	}
	if err != nil {
		return err
	}

	o.persist(ctx, desc.GameID(), domain.GameConfigPatch{
		GameFolder:  domain.StringPtr(desc.Folder()),
		LauncherAPI: domain.StringPtr(desc.Endpoint()),
	})

	if !o.transition(ctx, runID, func(st *RunState) {
		st.Phase = PhaseVerifying
		st.Progress = nil
	}) {
		return nil
	}

	result, err := o.exec.Verify(ctx, VerifyRequest{
		Endpoint: desc.Endpoint(),
		Folder:   desc.Folder(),
		Region:   desc.Region(),
	})
	if err != nil {
		if o.classifier.IsCancellation(err) {
			return err
		}
		logger.FromContext(ctx).Warn("automatic verification failed", "error", err)
		o.notify(ctx, Notification{
			Level:    LevelWarning,
			Kind:     desc.Kind(),
			RunID:    runID,
			GameID:   desc.GameID(),
			GameName: desc.GameName(),
			Title:    "Verification could not run",
			Message:  fmt.Sprintf("%s was downloaded but could not be verified. Verify the game files manually.", displayName(desc)),
		})
		o.transition(ctx, runID, func(st *RunState) {
			st.Active = false
			st.Task = nil
			st.Phase = PhaseError
			st.Error = fmt.Sprintf("automatic verification failed: %v; verify the game files manually", err)
		})
		return nil
	}

	o.finish(ctx, runID, desc, result.Failed, verifySummary(result.Total, result.OK, result.Failed))
	return nil
}

// runVerify checks the folder and always records the outcome so a later
// repair can use it.
func (o *Orchestrator) runVerify(ctx context.Context, runID uuid.UUID, desc Description) error {
	result, err := o.exec.Verify(ctx, VerifyRequest{
		Endpoint: desc.Endpoint(),
		Folder:   desc.Folder(),
		Region:   desc.Region(),
	})
	if err != nil {
		return err
	}

	summary := verifySummary(result.Total, result.OK, result.Failed)
	o.notify(ctx, Notification{
		Level:    levelFor(result.Failed),
		Kind:     desc.Kind(),
		RunID:    runID,
		GameID:   desc.GameID(),
		GameName: desc.GameName(),
		Title:    "Verification finished",
		Message:  fmt.Sprintf("%s: %s", displayName(desc), summary),
	})
	o.finish(ctx, runID, desc, result.Failed, summary)
	return nil
}

// runRepair repairs the requested files, or the failures of the latest
// verification of the same scope.
func (o *Orchestrator) runRepair(ctx context.Context, runID uuid.UUID, desc Description) error {
	files := desc.RepairFiles()
	if len(files) == 0 {
		files = o.RepairableFailuresFor(desc.GameID(), desc.Folder(), desc.Endpoint(), desc.Region())
	}
	if len(files) == 0 {
		return ErrNoRepairFiles
	}

	result, err := o.exec.Repair(ctx, RepairRequest{
		Endpoint: desc.Endpoint(),
		Folder:   desc.Folder(),
		Files:    files,
		Region:   desc.Region(),
	})
	if err != nil {
		return err
	}

	summary := repairSummary(result.Requested, result.Repaired, result.Failed)
	o.notify(ctx, Notification{
		Level:    levelFor(result.Failed),
		Kind:     desc.Kind(),
		RunID:    runID,
		GameID:   desc.GameID(),
		GameName: desc.GameName(),
		Title:    "Repair finished",
		Message:  fmt.Sprintf("%s: %s", displayName(desc), summary),
	})
	o.finish(ctx, runID, desc, result.Failed, summary)
	return nil
}

func (o *Orchestrator) runInstaller(ctx context.Context, runID uuid.UUID, desc Description) error {
	result, err := o.exec.FetchInstaller(ctx, InstallerRequest{
		Endpoint: desc.Endpoint(),
		Folder:   desc.Folder(),
		PresetID: desc.PresetID(),
		Update:   desc.Kind() == KindInstallerUpdate,
	})
	if err != nil {
		return err
	}

	o.persist(ctx, desc.GameID(), domain.GameConfigPatch{
		InstallerPath:    domain.StringPtr(result.Path),
		InstallerVersion: domain.StringPtr(result.Version),
	})
	o.notify(ctx, Notification{
		Level:    LevelInfo,
		Kind:     desc.Kind(),
		RunID:    runID,
		GameID:   desc.GameID(),
		GameName: desc.GameName(),
		Title:    "Installer ready",
		Message:  fmt.Sprintf("%s installer %s saved to %s", displayName(desc), result.Version, result.Path),
	})
	o.transition(ctx, runID, func(st *RunState) {
		st.Active = false
		st.Task = nil
		st.Phase = PhaseDone
		st.Error = ""
	})
	return nil
}

// finish records a verify or repair outcome and ends the run in done. Files
// still failing leave an informational error text.
func (o *Orchestrator) finish(ctx context.Context, runID uuid.UUID, desc Description, failed []string, summary string) {
	outcome := VerifyOutcome{
		GameID:   desc.GameID(),
		Folder:   desc.Folder(),
		Endpoint: desc.Endpoint(),
		Region:   desc.Region(),
		Failed:   slices.Clone(failed),
	}
	if outcome.Failed == nil {
		outcome.Failed = []string{}
	}

	o.transition(ctx, runID, func(st *RunState) {
		st.Active = false
		st.Task = nil
		st.Phase = PhaseDone
		st.LastVerify = &outcome
		st.Error = ""
		if len(failed) > 0 {
			st.Error = summary
		}
	})
}

// persist saves patch for gameID. Failures are logged and never fail the run.
func (o *Orchestrator) persist(ctx context.Context, gameID string, patch domain.GameConfigPatch) {
	if o.settings == nil {
		return
	}
	if _, err := o.settings.SaveGameConfig(ctx, gameID, patch); err != nil {
		logger.FromContext(ctx).Warn("failed to persist game configuration", "error", err)
	}
}

func levelFor(failed []string) Level {
	if len(failed) > 0 {
		return LevelWarning
	}
	return LevelInfo
}
