package compilation

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"go.trai.ch/testarc/internal/core/domain"
	"go.trai.ch/testarc/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	probeMarker  = "ProbeMarker"
	probePackage = "testarcprobe"
)

// The marker type and the declaration requesting it live in separate units.
var (
	probeMarkerSource = "package " + probePackage + "\n\n" +
		"// " + probeMarker + " requests a processing round.\n" +
		"type " + probeMarker + " struct{}\n"

	probeDriverSource = "package " + probePackage + "\n\n" +
		domain.DirectivePrefix + probeMarker + "\n" +
		"type driver struct{}\n"
)

// probeProcessor hands the type model of its final round to the caller and
// parks until released.
type probeProcessor struct {
	ready   *gate
	release *gate
	session *Session
}

func (p *probeProcessor) Markers() []string {
	return []string{probeMarker}
}

func (p *probeProcessor) Process(_ context.Context, round domain.Round) error {
	if !round.Over {
		return nil
	}
	p.session = newSession(round.Env)
	p.ready.open()
	<-p.release.done()
	return nil
}

type probeResult struct {
	res ports.CompileResult
	err error
}

// probe runs a compilation pass over the artifact on a worker and waits for
// its final round. The worker stays parked until Cleanup.
func (m *Manager) probe(ctx context.Context, a *Artifact) (*Session, error) {
	ctx, span := m.tracer.Start(ctx, "analyze", ports.WithAttribute("archive", a.archive))
	defer span.End()

	session, err := m.startProbe(ctx, a)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return session, nil
}

func (m *Manager) startProbe(ctx context.Context, a *Artifact) (*Session, error) {
	proc, finished, err := m.spawnProbe(ctx, a)
	if err != nil {
		return nil, err
	}

	select {
	case <-proc.ready.done():
		return proc.session, nil
	case <-ctx.Done():
		return nil, aborted(a, ctx.Err())
	case r := <-finished:
		// The worker only finishes after its final round once Cleanup released it.
		select {
		case <-proc.ready.done():
			return proc.session, nil
		default:
		}
		switch {
		case r.err != nil:
			return nil, r.err
		case !r.res.Success:
			return nil, compilationError(r.res.Diagnostics)
		default:
			return nil, zerr.With(domain.ErrSessionIncomplete, "archive", a.archive)
		}
	}
}

// spawnProbe creates the probe root and starts its worker.
func (m *Manager) spawnProbe(ctx context.Context, a *Artifact) (*probeProcessor, <-chan probeResult, error) {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	parent := filepath.Join(filepath.Dir(a.archive), domain.ProbeDirName)
	if err := os.MkdirAll(parent, domain.DirPerm); err != nil {
		return nil, nil, errors.Join(domain.ErrPackagingFailed, zerr.With(zerr.Wrap(err, "failed to create probe directory"), "path", parent))
	}
	root, err := os.MkdirTemp(parent, domain.TempDirPattern)
	if err != nil {
		return nil, nil, errors.Join(domain.ErrPackagingFailed, zerr.With(zerr.Wrap(err, "failed to create probe root"), "path", parent))
	}

	proc := &probeProcessor{ready: newGate(), release: newGate()}
	req := ports.CompileRequest{
		Sources: []domain.SourceUnit{
			{Path: probePackage + "/marker.go", Open: bytesOpener([]byte(probeMarkerSource))},
			{Path: probePackage + "/driver.go", Open: bytesOpener([]byte(probeDriverSource))},
		},
		Classpath:  append([]string{a.archive}, a.classpath...),
		OutputDir:  filepath.Join(root, domain.ClassesDirName),
		Processors: []ports.Processor{proc},
	}

	finished := make(chan probeResult, 1)
	workerCtx := context.WithoutCancel(ctx)

	m.registry.register(root, proc.release)
	m.workers.Go(func() error {
		res, err := m.compiler.Compile(workerCtx, req)
		finished <- probeResult{res: res, err: err}
		return nil
	})
	return proc, finished, nil
}

func aborted(a *Artifact, cause error) error {
	return errors.Join(zerr.With(zerr.Wrap(domain.ErrSessionAborted, "stopped waiting for analysis session"), "archive", a.archive), cause)
}
