package workerpool

// WorkerScript is the inert browser Worker script template (spec.md §4.7,
// §6: "the worker script dynamically imports `src`, invokes its default
// export with `args`, and posts back"). This Go module's Pool is the
// worker-side implementation for a server/Node-style host; WorkerScript is
// provided for a host that also wants to offload worker-context logic to
// real browser Worker threads, mirroring the same `{id, src, args}` /
// `{id, result}` / `{id, error}` protocol Pool.Dispatch speaks.
const WorkerScript = `
self.onmessage = async function (ev) {
  var msg = ev.data;
  try {
    var mod = await import(msg.src);
    var result = await mod.default.apply(null, msg.args);
    self.postMessage({ id: msg.id, result: result });
  } catch (err) {
    self.postMessage({ id: msg.id, error: String(err) });
  }
};
`
