package browser

// OverlayRootID is the id of the element every overlay node lives under.
const OverlayRootID = "tourguide-overlay-root"

// BindingName is the CDP binding the page reports events through.
const BindingName = "__tourguide_event"

const findTargetsJS = `(key, attr, refAttr) => {
	window.__tourguideSeq = window.__tourguideSeq || 0;
	const out = [];
	document.querySelectorAll('[' + attr + '="' + CSS.escape(key) + '"]').forEach((el) => {
		let ref = el.getAttribute(refAttr);
		if (!ref) {
			ref = 'tg-' + (++window.__tourguideSeq);
			el.setAttribute(refAttr, ref);
		}
		const r = el.getBoundingClientRect();
		out.push({ref: ref, rect: {top: r.top, left: r.left, width: r.width, height: r.height}});
	});
	return JSON.stringify(out);
}`

const measureJS = `(ref, refAttr) => {
	const el = document.querySelector('[' + refAttr + '="' + CSS.escape(ref) + '"]');
	if (!el || !el.isConnected) return '';
	const r = el.getBoundingClientRect();
	return JSON.stringify({top: r.top, left: r.left, width: r.width, height: r.height});
}`

const viewportJS = `() => JSON.stringify({width: window.innerWidth, height: window.innerHeight})`

const scrollOffsetJS = `() => JSON.stringify({x: window.scrollX, y: window.scrollY})`

const scrollToTopJS = `() => { window.scrollTo({top: 0, left: 0, behavior: 'smooth'}); }`

const scrollIntoViewJS = `(ref, refAttr) => {
	const el = document.querySelector('[' + refAttr + '="' + CSS.escape(ref) + '"]');
	if (!el || !el.isConnected) return '';
	el.scrollIntoView({behavior: 'smooth', block: 'center', inline: 'nearest'});
	return 'ok';
}`

// listenJS wires window events and the overlay's keyboard shortcuts to the
// binding. Scroll events are coalesced to one per animation frame.
const listenJS = `(binding, rootID) => {
	if (window.__tourguideListening) return;
	window.__tourguideListening = true;
	const send = (m) => { if (typeof window[binding] === 'function') window[binding](JSON.stringify(m)); };
	window.addEventListener('resize', () => send({type: 'resize', width: window.innerWidth, height: window.innerHeight}));
	window.addEventListener('orientationchange', () => send({type: 'orientation', width: window.innerWidth, height: window.innerHeight}));
	let ticking = false;
	window.addEventListener('scroll', () => {
		if (ticking) return;
		ticking = true;
		requestAnimationFrame(() => {
			ticking = false;
			send({type: 'scroll', x: window.scrollX, y: window.scrollY});
		});
	}, {passive: true});
	document.addEventListener('keydown', (e) => {
		if (!document.getElementById(rootID)) return;
		const intents = {ArrowRight: 'next', ArrowLeft: 'back', Escape: 'close'};
		if (intents[e.key]) send({type: 'intent', intent: intents[e.key]});
	});
	document.addEventListener('click', (e) => {
		const root = document.getElementById(rootID);
		if (!root || !root.contains(e.target)) return;
		const btn = e.target.closest('[data-intent]');
		if (btn) send({type: 'intent', intent: btn.dataset.intent});
	});
}`

const renderJS = `(p) => {
	let root = document.getElementById(p.rootID);
	if (!root) {
		root = document.createElement('div');
		root.id = p.rootID;
		root.style.cssText = 'position:absolute;top:0;left:0;width:0;height:0;overflow:visible;z-index:2147483647;';
		root.innerHTML =
			'<div data-part="backdrop"></div>' +
			'<div data-part="ring"></div>' +
			'<div data-part="panel" role="dialog" aria-live="polite">' +
				'<div data-part="header"><strong data-part="title"></strong>' +
				'<button data-intent="close" aria-label="Close">×</button></div>' +
				'<div data-part="body"></div>' +
				'<div data-part="footer"><span data-part="progress"></span>' +
				'<button data-intent="skip">Skip tour</button>' +
				'<button data-intent="back">Back</button>' +
				'<button data-intent="next"></button></div>' +
			'</div>';
		document.documentElement.appendChild(root);
	}
	const part = (name) => root.querySelector('[data-part="' + name + '"]');
	root.dataset.positionKey = String(p.positionKey);

	part('backdrop').style.cssText = p.backdropStyle;
	part('ring').style.cssText = p.ringStyle;
	part('panel').style.cssText = p.panelStyle;
	part('title').textContent = p.title;
	part('body').textContent = p.body;
	part('progress').textContent = p.progress;
	root.querySelector('[data-intent="back"]').style.display = p.first ? 'none' : '';
	root.querySelector('[data-intent="next"]').textContent = p.last ? 'Done' : 'Next';
}`

const clearJS = `(rootID) => {
	const root = document.getElementById(rootID);
	if (root) root.remove();
}`
